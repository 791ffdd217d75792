package backend

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/backmassage/texanim/internal/check"
)

// waitDelay bounds how long Wait blocks for stderr to close after the
// process was killed on timeout or cancellation.
const waitDelay = 2 * time.Second

// runner executes one tool binary. Each call is a separate process bounded
// by timeout (0 disables the limit) and cancelled with ctx.
type runner struct {
	backend check.Backend
	bin     string
	opts    Options
}

// run executes bin with args. When verbose, stderr is tee'd to the
// configured writer in real time; otherwise it is captured silently for
// the failure log and Hint.
func (r runner) run(ctx context.Context, timeout time.Duration, args []string) error {
	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if r.opts.Log != nil {
		r.opts.Log.Debug(r.opts.Verbose, "%s %s", r.bin, strings.Join(args, " "))
	}

	cmd := exec.CommandContext(runCtx, r.bin, args...)
	cmd.WaitDelay = waitDelay

	var stderrBuf bytes.Buffer
	if r.opts.Verbose {
		cmd.Stderr = io.MultiWriter(&stderrBuf, r.opts.stderr())
	} else {
		cmd.Stderr = &stderrBuf
	}

	err := cmd.Run()
	if err == nil {
		return nil
	}

	switch {
	case ctx.Err() != nil:
		err = ctx.Err()
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		err = ErrTimeout
	}
	return &Error{
		Backend: r.backend,
		Args:    append([]string{r.bin}, args...),
		Stderr:  stderrBuf.String(),
		Err:     err,
	}
}
