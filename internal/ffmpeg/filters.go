package ffmpeg

import (
	"fmt"
	"strings"
)

// Canvas is the fixed target frame every normalized clip is fitted to.
type Canvas struct {
	Width  int
	Height int
}

func (c Canvas) String() string {
	return fmt.Sprintf("%dx%d", c.Width, c.Height)
}

// FilterChain is an ordered list of ffmpeg video filter specs.
// Order matters: rotation, when present, must run before scaling.
type FilterChain []string

// String joins the chain into a single -vf expression.
func (fc FilterChain) String() string {
	return strings.Join(fc, ",")
}

// HasRotation reports whether the chain starts with a rotation step.
func (fc FilterChain) HasRotation() bool {
	return len(fc) > 0 && fc[0] == rotateCCW
}

// rotateCCW rotates 90° counter-clockwise. Portrait phone footage is
// assumed to need this direction; there is no per-file metadata check.
const rotateCCW = "transpose=2"

// PlanFilters derives the filter chain that maps a clip of the given
// dimensions onto the canvas. Pure function; caller must have rejected
// unprobable files already, so both dimensions are positive.
//
// Portrait clips get rotated to landscape first. Every clip then goes
// through the same fit step: scale down (or up) to fit inside the
// canvas preserving aspect ratio, pad the remainder equally on both
// sides, and force square pixels. A clip already at canvas size passes
// through with a zero pad.
func PlanFilters(dims Dimensions, canvas Canvas) FilterChain {
	var chain FilterChain

	if dims.IsPortrait() {
		chain = append(chain, rotateCCW)
	}

	fit := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,"+
			"pad=%d:%d:(ow-iw)/2:(oh-ih)/2,"+
			"setsar=1",
		canvas.Width, canvas.Height,
		canvas.Width, canvas.Height,
	)
	chain = append(chain, fit)

	return chain
}
