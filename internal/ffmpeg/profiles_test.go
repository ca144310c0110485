package ffmpeg

import (
	"reflect"
	"strings"
	"testing"
)

func TestSelectProfileSoftware(t *testing.T) {
	p := SelectProfile("software")

	if p.VideoCodec != "libx264" {
		t.Errorf("expected libx264, got %s", p.VideoCodec)
	}
	if p.Preset != "fast" {
		t.Errorf("expected preset fast, got %s", p.Preset)
	}
	if p.QualityFlag != "-crf" || p.Quality != "23" {
		t.Errorf("expected -crf 23, got %s %s", p.QualityFlag, p.Quality)
	}
	if p.RateControl != "" {
		t.Errorf("software profile should not set rate control, got %s", p.RateControl)
	}
	if p.IsHardware() {
		t.Error("software profile reports IsHardware")
	}
}

func TestSelectProfileHardware(t *testing.T) {
	for _, input := range []string{"2", "hardware"} {
		p := SelectProfile(input)

		if p.VideoCodec != "h264_nvenc" {
			t.Errorf("SelectProfile(%q): expected h264_nvenc, got %s", input, p.VideoCodec)
		}
		if p.QualityFlag != "-cq" || p.Quality != "26" {
			t.Errorf("SelectProfile(%q): expected -cq 26, got %s %s", input, p.QualityFlag, p.Quality)
		}
		if p.RateControl != "vbr" {
			t.Errorf("SelectProfile(%q): expected vbr rate control, got %q", input, p.RateControl)
		}
		if !p.IsHardware() {
			t.Errorf("SelectProfile(%q): IsHardware() = false", input)
		}

		args := strings.Join(p.VideoArgs(), " ")
		if !strings.Contains(args, "-rc vbr") {
			t.Errorf("SelectProfile(%q): args missing -rc vbr: %s", input, args)
		}
	}
}

func TestSelectProfileUnknownDefaultsToSoftware(t *testing.T) {
	software := SelectProfile("software")

	// Absent or unrecognized input must fail open to the compatible
	// path, never error
	for _, input := range []string{"", "9", "gpu", "HARDWARE", "3", "yes"} {
		p := SelectProfile(input)
		if p != software {
			t.Errorf("SelectProfile(%q) != SelectProfile(%q)", input, "software")
		}
	}
}

func TestSelectProfileIdempotent(t *testing.T) {
	for _, mode := range []string{"software", "hardware", "", "2"} {
		first := SelectProfile(mode).Args()
		for i := 0; i < 3; i++ {
			if got := SelectProfile(mode).Args(); !reflect.DeepEqual(got, first) {
				t.Fatalf("SelectProfile(%q) not stable: %v vs %v", mode, got, first)
			}
		}
	}
}

func TestProfileCommonArgsShared(t *testing.T) {
	software := SelectProfile("software")
	hardware := SelectProfile("hardware")

	if !reflect.DeepEqual(software.CommonArgs(), hardware.CommonArgs()) {
		t.Fatalf("profiles must share audio/frame-rate/timescale args:\n%v\n%v",
			software.CommonArgs(), hardware.CommonArgs())
	}

	// Stream copy at concat time needs identical output parameters
	// from every clip; these are the ones that make that hold
	joined := strings.Join(software.CommonArgs(), " ")
	for _, want := range []string{
		"-r 30",
		"-video_track_timescale 15360",
		"-c:a aac",
		"-ar 44100",
		"-ac 2",
		"-b:a 192k",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("common args missing %q: %s", want, joined)
		}
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input string
		want  Mode
	}{
		{"2", ModeHardware},
		{"hardware", ModeHardware},
		{"1", ModeSoftware},
		{"software", ModeSoftware},
		{"", ModeSoftware},
		{"9", ModeSoftware},
	}

	for _, tt := range tests {
		if got := ParseMode(tt.input); got != tt.want {
			t.Errorf("ParseMode(%q) = %s, expected %s", tt.input, got, tt.want)
		}
	}
}
