package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Dimensions holds the pixel size of a clip's first video stream.
type Dimensions struct {
	Width  int
	Height int
}

// IsPortrait reports whether the clip is taller than it is wide.
func (d Dimensions) IsPortrait() bool {
	return d.Height > d.Width
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// Prober wraps ffprobe functionality
type Prober struct {
	ffprobePath string
}

// NewProber creates a new Prober with the given ffprobe path
func NewProber(ffprobePath string) *Prober {
	return &Prober{ffprobePath: ffprobePath}
}

// Dimensions returns the width/height of the first video stream.
// Any failure — missing binary, non-zero exit, no video stream, output
// that isn't a WxH pair — is returned as an error; callers treat it as
// "this file can't be processed" and move on. No retry.
func (p *Prober) Dimensions(ctx context.Context, path string) (Dimensions, error) {
	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=s=x:p=0",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return Dimensions{}, fmt.Errorf("ffprobe failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Dimensions{}, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseDimensions(string(output))
}

// parseDimensions parses a single "WxH" token, e.g. "1920x1080".
func parseDimensions(s string) (Dimensions, error) {
	// ffprobe may emit a trailing separator with csv output; take the
	// first non-empty line only
	line := strings.TrimSpace(s)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	line = strings.TrimSuffix(line, "x")

	parts := strings.Split(line, "x")
	if len(parts) != 2 {
		return Dimensions{}, fmt.Errorf("unexpected ffprobe output %q", line)
	}

	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return Dimensions{}, fmt.Errorf("bad width in %q", line)
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return Dimensions{}, fmt.Errorf("bad height in %q", line)
	}
	if w <= 0 || h <= 0 {
		return Dimensions{}, fmt.Errorf("non-positive dimensions %q", line)
	}

	return Dimensions{Width: w, Height: h}, nil
}
