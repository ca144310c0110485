package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// argStub writes a stub that records its arguments to argsFile and
// touches its last argument (the output path), like a successful ffmpeg.
func argStub(t *testing.T, dir, name, argsFile string) string {
	t.Helper()
	body := `echo "$@" > "` + argsFile + `"
for last in "$@"; do :; done
: > "$last"
`
	return writeStub(t, dir, name, body)
}

func TestNormalizeBuildsExpectedCommand(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args.txt")

	probe := writeStub(t, dir, "ffprobe", `echo "1080x1920"`)
	encode := argStub(t, dir, "ffmpeg", argsFile)

	canvas := Canvas{Width: 1920, Height: 1080}
	norm := NewNormalizer(encode, NewProber(probe), canvas)
	outPath := filepath.Join(dir, "out.mp4")

	if err := norm.Normalize(context.Background(), "in.mov", outPath, SelectProfile("software")); err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	data, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("stub did not record args: %v", err)
	}
	args := strings.TrimSpace(string(data))

	// Portrait input: rotation must precede scale+pad in the -vf value
	wantChain := "transpose=2,scale=1920:1080:force_original_aspect_ratio=decrease," +
		"pad=1920:1080:(ow-iw)/2:(oh-ih)/2,setsar=1"
	for _, want := range []string{
		"-i in.mov",
		"-vf " + wantChain,
		"-c:v libx264",
		"-crf 23",
		"-video_track_timescale 15360",
		"-y " + outPath,
	} {
		if !strings.Contains(args, want) {
			t.Errorf("command missing %q:\n%s", want, args)
		}
	}

	if _, err := os.Stat(outPath); err != nil {
		t.Errorf("expected output file at %s: %v", outPath, err)
	}
}

func TestNormalizeProbeFailureSkipsTranscode(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args.txt")

	probe := writeStub(t, dir, "ffprobe", `echo "unreadable" >&2; exit 1`)
	encode := argStub(t, dir, "ffmpeg", argsFile)

	norm := NewNormalizer(encode, NewProber(probe), Canvas{Width: 1920, Height: 1080})
	err := norm.Normalize(context.Background(), "broken.mp4", filepath.Join(dir, "out.mp4"), SelectProfile("software"))
	if err == nil {
		t.Fatal("expected error for unprobable input")
	}

	// A file we can't measure must never reach ffmpeg
	if _, statErr := os.Stat(argsFile); !os.IsNotExist(statErr) {
		t.Error("ffmpeg was invoked despite probe failure")
	}
}

func TestNormalizeTranscodeFailure(t *testing.T) {
	dir := t.TempDir()

	probe := writeStub(t, dir, "ffprobe", `echo "1920x1080"`)
	encode := writeStub(t, dir, "ffmpeg", `echo "Conversion failed!" >&2; exit 1`)

	norm := NewNormalizer(encode, NewProber(probe), Canvas{Width: 1920, Height: 1080})
	err := norm.Normalize(context.Background(), "bad.mp4", filepath.Join(dir, "out.mp4"), SelectProfile("software"))
	if err == nil {
		t.Fatal("expected error for failing transcode")
	}

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected CommandError, got %T", err)
	}
	if !strings.Contains(cmdErr.Stderr, "Conversion failed!") {
		t.Errorf("expected captured stderr, got %q", cmdErr.Stderr)
	}
	if cmdErr.Tail(5) == "" {
		t.Error("expected non-empty stderr tail")
	}
}

func TestNormalizeHardwareProfileArgs(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args.txt")

	probe := writeStub(t, dir, "ffprobe", `echo "1280x720"`)
	encode := argStub(t, dir, "ffmpeg", argsFile)

	norm := NewNormalizer(encode, NewProber(probe), Canvas{Width: 1920, Height: 1080})
	if err := norm.Normalize(context.Background(), "in.mp4", filepath.Join(dir, "out.mp4"), SelectProfile("2")); err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	data, _ := os.ReadFile(argsFile)
	args := string(data)
	for _, want := range []string{"-c:v h264_nvenc", "-preset p4", "-cq 26", "-rc vbr"} {
		if !strings.Contains(args, want) {
			t.Errorf("hardware command missing %q:\n%s", want, args)
		}
	}
	if strings.Contains(args, "transpose") {
		t.Errorf("landscape input should not rotate:\n%s", args)
	}
}
