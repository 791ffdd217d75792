package backend

import (
	"context"
	"strconv"

	"github.com/backmassage/texanim/internal/check"
	"github.com/backmassage/texanim/internal/config"
	"github.com/backmassage/texanim/internal/planner"
)

// Magick runs ImageMagick ("magick", legacy "convert", or an explicit path).
type Magick struct {
	r runner
}

// NewMagick returns an ImageMagick invoker for the executable bin.
func NewMagick(bin string, opts Options) *Magick {
	return &Magick{r: runner{backend: check.BackendImageMagick, bin: bin, opts: opts}}
}

func (m *Magick) Name() check.Backend { return check.BackendImageMagick }

// Convert runs one command per group, or one per frame for transparent-png.
func (m *Magick) Convert(ctx context.Context, job *planner.Job) error {
	if job.Kind == config.KindTransparentPNG {
		for _, t := range job.FrameOutputs {
			if err := m.r.run(ctx, job.Timeout, MagickKeyArgs(job, t.Input, t.Output)); err != nil {
				return err
			}
		}
		return nil
	}
	return m.r.run(ctx, job.Timeout, MagickAnimateArgs(job))
}

// MagickAnimateArgs builds the animate command:
//
//	-delay D -dispose M -loop L frame... [-coalesce -layers Optimize] out.gif
//	-delay D -dispose M -loop L frame... -fuzz F% -transparent C out.gif
func MagickAnimateArgs(job *planner.Job) []string {
	args := make([]string, 0, len(job.Frames)+12)
	args = append(args,
		"-delay", strconv.Itoa(job.Delay),
		"-dispose", string(job.Dispose),
		"-loop", strconv.Itoa(job.Loop),
	)
	args = append(args, job.Frames...)
	if job.Transparent {
		args = append(args, "-fuzz", fuzzArg(job.Fuzz), "-transparent", job.KeyColor)
	} else if job.Optimize {
		args = append(args, "-coalesce", "-layers", "Optimize")
	}
	return append(args, job.Output)
}

// MagickKeyArgs builds the per-frame keying command:
//
//	in -fuzz F% -transparent C out
func MagickKeyArgs(job *planner.Job, in, out string) []string {
	return []string{in, "-fuzz", fuzzArg(job.Fuzz), "-transparent", job.KeyColor, out}
}

func fuzzArg(fuzz int) string {
	return strconv.Itoa(fuzz) + "%"
}
