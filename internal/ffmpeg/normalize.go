package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/gwlsn/vidstitch/internal/logger"
)

// CommandError represents a failed ffmpeg invocation with the captured
// stderr tail for diagnostics.
type CommandError struct {
	Err    error
	Stderr string
}

func (e *CommandError) Error() string {
	return e.Err.Error()
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Tail returns the last n lines of captured stderr joined on one line,
// suitable for a log field.
func (e *CommandError) Tail(n int) string {
	return stderrTail(e.Stderr, n)
}

// stderrTail returns the last few lines of stderr, which is where
// ffmpeg puts the actual reason it gave up.
func stderrTail(stderr string, n int) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}

// Normalizer transforms one source clip into one canvas-sized,
// profile-encoded output via a single ffmpeg invocation.
type Normalizer struct {
	ffmpegPath string
	prober     *Prober
	canvas     Canvas
}

// NewNormalizer creates a Normalizer using the given binaries and canvas.
func NewNormalizer(ffmpegPath string, prober *Prober, canvas Canvas) *Normalizer {
	return &Normalizer{ffmpegPath: ffmpegPath, prober: prober, canvas: canvas}
}

// Canvas returns the target canvas this normalizer fits clips to.
func (n *Normalizer) Canvas() Canvas {
	return n.canvas
}

// Normalize probes the input, plans the filter chain and runs ffmpeg
// once, writing the result to outputPath. A nil return means ffmpeg
// exited zero and outputPath holds a valid clip. Any error — probe
// failure included — is a per-file soft failure: the caller skips the
// file and keeps going. A failed run may leave a partial file at
// outputPath; callers must not reference it.
func (n *Normalizer) Normalize(ctx context.Context, inputPath, outputPath string, profile *Profile) error {
	// Gate on the probe first: a file we can't measure would only
	// produce a garbage ffmpeg invocation.
	dims, err := n.prober.Dimensions(ctx, inputPath)
	if err != nil {
		return fmt.Errorf("probe %s: %w", inputPath, err)
	}

	chain := PlanFilters(dims, n.canvas)
	if chain.HasRotation() {
		logger.Debug("portrait clip, rotating", "path", inputPath, "dims", dims.String())
	}

	args := []string{"-i", inputPath, "-vf", chain.String()}
	args = append(args, profile.Args()...)
	args = append(args, "-y", outputPath)

	cmd := exec.CommandContext(ctx, n.ffmpegPath, args...)
	logger.Debug("ffmpeg command", "args", strings.Join(args, " "))

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return &CommandError{
			Err:    fmt.Errorf("normalize %s: ffmpeg: %w", inputPath, err),
			Stderr: stderr.String(),
		}
	}

	return nil
}
