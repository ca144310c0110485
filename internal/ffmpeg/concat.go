package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/gwlsn/vidstitch/internal/logger"
)

// Concatenator merges normalized clips with the concat demuxer in
// stream-copy mode. No re-encoding happens here; it relies entirely on
// the Normalizer having produced bit-compatible streams.
type Concatenator struct {
	ffmpegPath string
}

// NewConcatenator creates a Concatenator with the given ffmpeg path
func NewConcatenator(ffmpegPath string) *Concatenator {
	return &Concatenator{ffmpegPath: ffmpegPath}
}

// Concat reads the list artifact and stream-copies its entries into
// outputPath. A stale artifact at outputPath from a previous run is
// deleted first. Unlike normalization there is no partial success:
// either the merged file is complete or the error is terminal for
// the whole run.
func (c *Concatenator) Concat(ctx context.Context, listPath, outputPath string) error {
	if err := os.Remove(outputPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale output %s: %w", outputPath, err)
	}

	args := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	logger.Debug("ffmpeg command", "args", strings.Join(args, " "))

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		logger.Error("concat failed", "error", err, "stderr", stderrTail(stderr.String(), 5))
		return &CommandError{
			Err:    fmt.Errorf("concat: ffmpeg: %w", err),
			Stderr: stderr.String(),
		}
	}

	return nil
}
