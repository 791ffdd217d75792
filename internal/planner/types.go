package planner

import (
	"time"

	"github.com/backmassage/texanim/internal/config"
)

// FrameTarget pairs one input frame with its keyed output (transparent-png).
type FrameTarget struct {
	Input  string
	Output string
}

// Job holds every decision for converting a single group. It is produced by
// BuildJob and consumed by the backend invokers to construct argument
// vectors.
type Job struct {
	Kind config.Kind
	Name string // Group base name.

	// Input.
	Frames []string // Frame paths in playback order.

	// Output.
	Output       string        // Single output file; empty for transparent-png.
	FrameOutputs []FrameTarget // Per-frame outputs; transparent-png only.

	// Animation.
	Delay      int    // Centiseconds between frames (ImageMagick -delay).
	FrameRate  string // 100/Delay as an ffmpeg rational, e.g. "10" or "100/3".
	Loop       int    // ImageMagick -loop: play count, 0 is infinite.
	FFmpegLoop int    // ffmpeg -loop: 0 infinite, -1 play once, N repeats N times.
	Dispose    config.Dispose
	Optimize   bool // ImageMagick -coalesce -layers Optimize.

	// Transparency keying.
	Transparent    bool   // Near-KeyColor pixels become transparent.
	KeyColor       string // ImageMagick color name or ffmpeg color spec.
	Fuzz           int    // Percent, ImageMagick -fuzz.
	Similarity     string // Fuzz as ffmpeg colorkey similarity (0.01 to 1).
	Blend          string // ffmpeg colorkey blend.
	PreserveAlpha  bool   // ffmpeg palettegen reserve_transparent + paletteuse alpha_threshold.
	AlphaThreshold int

	// ffmpeg palette pass.
	ScaleWidth string // Pixels, or "iw" to keep the input width.

	// Execution.
	Timeout  time.Duration
	KeepTemp bool
}

// Outputs lists every file the job writes on success.
func (j *Job) Outputs() []string {
	if j.Output != "" {
		return []string{j.Output}
	}
	out := make([]string, len(j.FrameOutputs))
	for i, t := range j.FrameOutputs {
		out[i] = t.Output
	}
	return out
}

// ForFrame returns a copy of a transparent-png job narrowed to the single
// frame t, so each frame can succeed or fail on its own.
func (j *Job) ForFrame(t FrameTarget) *Job {
	sub := *j
	sub.Frames = []string{t.Input}
	sub.FrameOutputs = []FrameTarget{t}
	return &sub
}
