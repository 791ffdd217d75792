package backend

import (
	"context"

	"github.com/backmassage/texanim/internal/check"
	"github.com/backmassage/texanim/internal/planner"
)

// Result is the outcome of one invoker attempt: Err is nil on success, in
// which case Outputs lists the files written.
type Result struct {
	Backend check.Backend
	Outputs []string
	Err     error
}

// OK reports whether the attempt succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Outcome records every attempt a Chain made for one job, primary first.
type Outcome struct {
	Attempts []Result
}

// Final returns the last attempt, which decides the job's status.
func (o Outcome) Final() Result {
	if len(o.Attempts) == 0 {
		return Result{}
	}
	return o.Attempts[len(o.Attempts)-1]
}

// OK reports whether the job ended successfully.
func (o Outcome) OK() bool {
	return len(o.Attempts) > 0 && o.Final().OK()
}

// UsedFallback reports whether the fallback ran.
func (o Outcome) UsedFallback() bool { return len(o.Attempts) > 1 }

// Chain pairs the primary invoker with an optional fallback.
type Chain struct {
	Primary  Invoker
	Fallback Invoker // nil when no fallback is available or it is disabled.

	// BeforeFallback, when set, runs after a primary failure and before the
	// fallback starts (the driver logs and removes partial outputs here).
	BeforeFallback func(job *planner.Job, primary Result)
}

// Convert attempts the primary; when it fails and selectFallback allows,
// the fallback is attempted exactly once. There are no further retries.
func (c *Chain) Convert(ctx context.Context, job *planner.Job) Outcome {
	var out Outcome
	primary := attempt(ctx, c.Primary, job)
	out.Attempts = append(out.Attempts, primary)

	fb := selectFallback(ctx, primary, c.Fallback)
	if fb == nil {
		return out
	}
	if c.BeforeFallback != nil {
		c.BeforeFallback(job, primary)
	}
	out.Attempts = append(out.Attempts, attempt(ctx, fb, job))
	return out
}

// selectFallback returns the invoker to try after primary, or nil. The
// fallback is only chosen after a failure, and never once the run has been
// cancelled.
func selectFallback(ctx context.Context, primary Result, fallback Invoker) Invoker {
	switch {
	case primary.OK():
		return nil
	case fallback == nil:
		return nil
	case ctx.Err() != nil:
		return nil
	case fallback.Name() == primary.Backend:
		return nil
	}
	return fallback
}

func attempt(ctx context.Context, inv Invoker, job *planner.Job) Result {
	if err := inv.Convert(ctx, job); err != nil {
		return Result{Backend: inv.Name(), Err: err}
	}
	return Result{Backend: inv.Name(), Outputs: job.Outputs()}
}
