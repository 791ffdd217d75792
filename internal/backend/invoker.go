package backend

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/backmassage/texanim/internal/check"
	"github.com/backmassage/texanim/internal/config"
	"github.com/backmassage/texanim/internal/planner"
)

// Invoker converts one job with a single external tool.
type Invoker interface {
	Name() check.Backend
	Convert(ctx context.Context, job *planner.Job) error
}

// Logger is the subset of the logging API the invokers use to trace
// command lines.
type Logger interface {
	Debug(bool, string, ...interface{})
}

// Options control how invokers run their tools.
type Options struct {
	Verbose bool      // Tee tool stderr to Stderr and trace command lines.
	Stderr  io.Writer // Tee target when Verbose; defaults to os.Stderr.
	TempDir string    // ffmpeg manifest/palette location; defaults to os.TempDir().
	Log     Logger    // Optional command tracing.
}

// New returns the invoker for backend b using the executable recorded in res.
func New(b check.Backend, res *check.Resolution, opts Options) (Invoker, error) {
	if !res.Has(b) {
		return nil, fmt.Errorf("backend %q not available", b)
	}
	switch b {
	case check.BackendImageMagick:
		return NewMagick(res.Magick, opts), nil
	case check.BackendFFmpeg:
		return NewFFmpeg(res.FFmpeg, opts), nil
	}
	return nil, fmt.Errorf("unknown backend %q", b)
}

// NewChain builds the primary/fallback pair for a run. ImageMagick is
// primary when it resolved; ffmpeg is then the fallback unless disabled.
// Without ImageMagick, ffmpeg is primary and there is no fallback.
func NewChain(res *check.Resolution, cfg *config.Config, opts Options) (*Chain, error) {
	primary, err := New(res.Preferred(), res, opts)
	if err != nil {
		return nil, err
	}
	chain := &Chain{Primary: primary}
	if primary.Name() == check.BackendImageMagick && res.Has(check.BackendFFmpeg) && !cfg.NoFallback {
		chain.Fallback = NewFFmpeg(res.FFmpeg, opts)
	}
	return chain, nil
}

func (o Options) stderr() io.Writer {
	if o.Stderr != nil {
		return o.Stderr
	}
	return os.Stderr
}

func (o Options) tempDir() string {
	if o.TempDir != "" {
		return o.TempDir
	}
	return os.TempDir()
}
