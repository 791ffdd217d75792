package planner

import (
	"strconv"

	"github.com/backmassage/texanim/internal/config"
	"github.com/backmassage/texanim/internal/frames"
	"github.com/backmassage/texanim/internal/naming"
	"github.com/backmassage/texanim/internal/probe"
)

// BuildJob produces a complete Job for group g. outBase is the collision-free
// output base name (usually g.Name), outDir the pipeline output directory.
// info may be nil when the first frame could not be probed.
//
// Flow:
//  1. Output paths (one file, or one per frame for transparent-png)
//  2. Frame rate and loop mapping
//  3. Keying parameters for transparent pipelines
//  4. Scale width and alpha preservation for the ffmpeg palette pass
func BuildJob(cfg *config.Config, kind config.Kind, g frames.Group, outBase, outDir string, info *probe.ImageInfo) *Job {
	job := &Job{
		Kind:     kind,
		Name:     g.Name,
		Frames:   g.Paths(),
		Timeout:  cfg.Timeout,
		KeepTemp: cfg.KeepTemp,
	}
	if outBase == "" {
		outBase = g.Name
	}

	// --- 1. Outputs ---
	switch kind {
	case config.KindTransparentPNG:
		job.FrameOutputs = make([]FrameTarget, len(g.Frames))
		for i, f := range g.Frames {
			job.FrameOutputs[i] = FrameTarget{
				Input:  f.Path,
				Output: naming.FramePath(outDir, outBase, f.Index, ".png"),
			}
		}
	default:
		job.Output = naming.OutputPath(outDir, outBase, ".gif")
	}

	// --- 2. Timing ---
	job.Delay = cfg.Delay
	job.FrameRate = FrameRate(cfg.Delay)
	job.Loop = cfg.Loop
	job.FFmpegLoop = FFmpegLoop(cfg.Loop)
	job.Dispose = cfg.Dispose
	job.Optimize = cfg.Optimize && kind == config.KindGIF

	// --- 3. Keying ---
	job.Transparent = kind != config.KindGIF
	job.KeyColor = cfg.KeyColor
	job.Fuzz = cfg.Fuzz
	job.Similarity = Similarity(cfg.Fuzz)
	job.Blend = strconv.FormatFloat(cfg.Blend, 'f', -1, 64)
	job.AlphaThreshold = cfg.AlphaThreshold

	// --- 4. Palette pass ---
	job.ScaleWidth = ScaleWidth(cfg.ScaleWidth, info)
	job.PreserveAlpha = job.Transparent || info.HasAlpha()

	return job
}

// FrameRate converts a centisecond delay to the equivalent frame rate as an
// ffmpeg rational: 10 → "10", 3 → "100/3".
func FrameRate(delay int) string {
	if delay <= 0 {
		delay = 1
	}
	if 100%delay == 0 {
		return strconv.Itoa(100 / delay)
	}
	return "100/" + strconv.Itoa(delay)
}

// FFmpegLoop maps an ImageMagick play count to ffmpeg's GIF muxer -loop:
// ImageMagick plays N times, ffmpeg repeats N times after the first, and
// -1 disables looping.
func FFmpegLoop(loop int) int {
	switch {
	case loop <= 0:
		return 0
	case loop == 1:
		return -1
	default:
		return loop - 1
	}
}

// Similarity converts a fuzz percentage to colorkey similarity, clamped to
// the filter's accepted range.
func Similarity(fuzz int) string {
	s := float64(fuzz) / 100
	if s < 0.01 {
		s = 0.01
	}
	if s > 1 {
		s = 1
	}
	return strconv.FormatFloat(s, 'f', -1, 64)
}

// ScaleWidth returns the configured width, else the probed frame width,
// else "iw".
func ScaleWidth(configured int, info *probe.ImageInfo) string {
	if configured > 0 {
		return strconv.Itoa(configured)
	}
	if info != nil && info.Width > 0 {
		return strconv.Itoa(info.Width)
	}
	return "iw"
}
