package backend

import (
	"context"
	"strconv"
	"strings"

	"github.com/backmassage/texanim/internal/check"
	"github.com/backmassage/texanim/internal/config"
	"github.com/backmassage/texanim/internal/planner"
)

// FFmpeg is the fallback invoker. Animations use a two-pass palette
// pipeline over a concat manifest; keyed frames use colorkey.
type FFmpeg struct {
	r runner
}

// NewFFmpeg returns an ffmpeg invoker for the executable bin.
func NewFFmpeg(bin string, opts Options) *FFmpeg {
	return &FFmpeg{r: runner{backend: check.BackendFFmpeg, bin: bin, opts: opts}}
}

func (f *FFmpeg) Name() check.Backend { return check.BackendFFmpeg }

// Convert writes the manifest, runs the palette and encode passes, and
// removes its temporary files unless job.KeepTemp is set. For
// transparent-png it keys each frame separately.
func (f *FFmpeg) Convert(ctx context.Context, job *planner.Job) error {
	if job.Kind == config.KindTransparentPNG {
		for _, t := range job.FrameOutputs {
			if err := f.r.run(ctx, job.Timeout, FFmpegKeyArgs(job, t.Input, t.Output, f.r.opts.Verbose)); err != nil {
				return err
			}
		}
		return nil
	}

	tmp := f.r.opts.tempDir()
	manifest, err := writeManifest(tmp, job.Frames)
	if err != nil {
		return err
	}
	palette := tempPath(tmp, "-palette.png")
	if !job.KeepTemp {
		defer removeTemp(manifest, palette)
	}

	if err := f.r.run(ctx, job.Timeout, FFmpegPaletteArgs(job, manifest, palette, f.r.opts.Verbose)); err != nil {
		return err
	}
	return f.r.run(ctx, job.Timeout, FFmpegEncodeArgs(job, manifest, palette, f.r.opts.Verbose))
}

// FFmpegPaletteArgs builds the first pass:
//
//	-r R -f concat -safe 0 -i manifest -vf fps=R,scale=W:-1:flags=lanczos[,colorkey],palettegen palette.png
func FFmpegPaletteArgs(job *planner.Job, manifest, palette string, verbose bool) []string {
	args := preamble(verbose)
	args = append(args, concatInput(job, manifest)...)
	args = append(args, "-vf", baseFilter(job)+","+paletteGen(job))
	return append(args, palette)
}

// FFmpegEncodeArgs builds the second pass:
//
//	-r R -f concat -safe 0 -i manifest -i palette -lavfi <base>[x];[x][1:v]paletteuse -loop N out.gif
func FFmpegEncodeArgs(job *planner.Job, manifest, palette string, verbose bool) []string {
	args := preamble(verbose)
	args = append(args, concatInput(job, manifest)...)
	args = append(args, "-i", palette)
	args = append(args, "-lavfi", baseFilter(job)+"[x];[x][1:v]"+paletteUse(job))
	args = append(args, "-loop", strconv.Itoa(job.FFmpegLoop), "-f", "gif")
	return append(args, job.Output)
}

// FFmpegKeyArgs builds the per-frame keying command:
//
//	-i in -vf colorkey=C:S:B,format=rgba -frames:v 1 -update 1 out
func FFmpegKeyArgs(job *planner.Job, in, out string, verbose bool) []string {
	args := preamble(verbose)
	args = append(args,
		"-i", in,
		"-vf", colorKey(job)+",format=rgba",
		"-frames:v", "1",
		"-update", "1",
	)
	return append(args, out)
}

func preamble(verbose bool) []string {
	level := "error"
	if verbose {
		level = "info"
	}
	return []string{"-hide_banner", "-nostdin", "-y", "-loglevel", level}
}

func concatInput(job *planner.Job, manifest string) []string {
	return []string{"-r", job.FrameRate, "-f", "concat", "-safe", "0", "-i", manifest}
}

// baseFilter is shared by both passes so the palette matches the frames it
// is applied to.
func baseFilter(job *planner.Job) string {
	parts := []string{
		"fps=" + job.FrameRate,
		"scale=" + job.ScaleWidth + ":-1:flags=lanczos",
	}
	if job.Transparent {
		parts = append(parts, colorKey(job))
	}
	return strings.Join(parts, ",")
}

func colorKey(job *planner.Job) string {
	return "colorkey=" + job.KeyColor + ":" + job.Similarity + ":" + job.Blend
}

func paletteGen(job *planner.Job) string {
	if job.PreserveAlpha {
		return "palettegen=reserve_transparent=1"
	}
	return "palettegen"
}

func paletteUse(job *planner.Job) string {
	if job.PreserveAlpha {
		return "paletteuse=alpha_threshold=" + strconv.Itoa(job.AlphaThreshold)
	}
	return "paletteuse"
}
