package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/backmassage/texanim/internal/backend"
	"github.com/backmassage/texanim/internal/check"
	"github.com/backmassage/texanim/internal/config"
	"github.com/backmassage/texanim/internal/display"
	"github.com/backmassage/texanim/internal/frames"
	"github.com/backmassage/texanim/internal/logging"
	"github.com/backmassage/texanim/internal/naming"
	"github.com/backmassage/texanim/internal/planner"
	"github.com/backmassage/texanim/internal/probe"
	"github.com/backmassage/texanim/internal/term"
)

// stderrTailLines is how much tool output is logged for a failed group.
const stderrTailLines = 20

// Prepare runs the fatal setup checks shared by every pipeline: the input
// directory must exist, then the tools are probed once. Nothing is created
// on disk.
func Prepare(ctx context.Context, cfg *config.Config, prober *check.Prober) (*check.Resolution, error) {
	if err := ValidateInput(cfg.InputDir); err != nil {
		return nil, err
	}
	return prober.Probe(ctx, cfg.Backend)
}

// Run is the entry point for one pipeline. It groups the input frames,
// locks the pipeline output directory, converts each group sequentially,
// and returns aggregate stats. The returned error is non-nil only for setup
// failures; per-group failures are counted in RunStats.
func Run(ctx context.Context, cfg *config.Config, kind config.Kind, res *check.Resolution, log *logging.Logger) (RunStats, error) {
	chain, err := backend.NewChain(res, cfg, backend.Options{Verbose: cfg.Verbose, Log: log})
	if err != nil {
		return RunStats{Kind: kind}, err
	}
	return runWith(ctx, cfg, kind, res, chain, log)
}

// runner carries the per-run state shared by every group.
type runner struct {
	cfg      *config.Config
	kind     config.Kind
	res      *check.Resolution
	chain    *backend.Chain
	log      *logging.Logger
	outDir   string
	resolver *naming.CollisionResolver
	probe    bool // Inspect first frames with ffprobe for the ffmpeg palette pass.
}

func runWith(ctx context.Context, cfg *config.Config, kind config.Kind, res *check.Resolution, chain *backend.Chain, log *logging.Logger) (RunStats, error) {
	stats := RunStats{Kind: kind}
	start := time.Now()

	listing, err := Discover(cfg.InputDir, cfg.Extension)
	if err != nil {
		return stats, err
	}

	r := &runner{
		cfg:      cfg,
		kind:     kind,
		res:      res,
		chain:    chain,
		log:      log,
		outDir:   cfg.PipelineDir(kind),
		resolver: naming.NewCollisionResolver(),
	}
	r.probe = res != nil && res.FFprobe != "" && usesFFmpeg(chain)

	stats.Total = len(listing.Groups)
	logListing(cfg, log, kind, listing)
	if stats.Total == 0 {
		log.Info("No frame sequences found in %s (need at least %d %s frames named <base>_<n>)",
			cfg.InputDir, frames.MinFrames, cfg.Extension)
		return stats, nil
	}

	lock, err := lockOutput(r.outDir)
	if err != nil {
		return stats, err
	}
	defer func() { _ = lock.Unlock() }()

	r.logBatchHeader()

	chain.BeforeFallback = r.beforeFallback
	for i, g := range listing.Groups {
		stats.Current = i + 1

		if ctx.Err() != nil {
			log.Warn("Interrupted")
			break
		}

		stats.record(r.processGroup(ctx, g, &stats))
	}

	stats.Elapsed = time.Since(start)
	logSummary(cfg, log, &stats)
	return stats, nil
}

// processGroup handles one sequence: resolve output → plan → skip/dry-run
// checks → primary, then fallback once on failure.
func (r *runner) processGroup(ctx context.Context, g frames.Group, stats *RunStats) GroupResult {
	result := GroupResult{
		Name:   g.Name,
		Frames: len(g.Frames),
		First:  g.First().Index,
		Last:   g.Last().Index,
	}
	r.log.Info("[%d/%d] %s (%d frames, %s)", stats.Current, stats.Total, g.Name,
		len(g.Frames), display.FormatFrameRange(result.First, result.Last))
	if gaps := g.Gaps(); gaps > 0 {
		r.log.Debug(r.cfg.Verbose, "  %d missing frame index(es) between %d and %d", gaps, result.First, result.Last)
	}

	// --- Resolve output base ---
	base := r.outputBase(g.Name)

	// --- Inspect first frame ---
	var info *probe.ImageInfo
	if r.probe {
		info = r.inspect(ctx, g.First().Path)
	}

	// --- Plan ---
	job := planner.BuildJob(r.cfg, r.kind, g, base, r.outDir, info)

	// --- Skip-existing check ---
	if r.cfg.SkipExisting && allExist(job.Outputs()) {
		r.log.Warn("Skip (exists): %s", describeOutputs(job))
		result.Status = StatusSkipped
		return result
	}

	r.log.Info("  -> %s", describeOutputs(job))

	// --- Dry-run ---
	if r.cfg.DryRun {
		r.log.Success("[DRY] Would convert via %s", r.chain.Primary.Name())
		result.Status = StatusDryRun
		return result
	}

	// --- Create output directory ---
	if err := os.MkdirAll(r.outDir, 0o755); err != nil {
		r.log.Error("Cannot create output directory: %v", err)
		result.Status = StatusFailed
		result.Err = err
		return result
	}

	// --- Execute with fallback ---
	if r.kind == config.KindTransparentPNG {
		r.convertFrames(ctx, job, &result)
	} else {
		r.convertGroup(ctx, job, &result)
	}
	return result
}

// convertGroup runs the whole group as one item: primary, then fallback
// once. A failed group leaves no output behind.
func (r *runner) convertGroup(ctx context.Context, job *planner.Job, result *GroupResult) {
	start := time.Now()
	outcome := r.chain.Convert(ctx, job)
	final := outcome.Final()
	result.Backend = final.Backend
	result.Fallback = outcome.UsedFallback()

	if !outcome.OK() {
		if errors.Is(final.Err, context.Canceled) {
			r.log.Warn("Interrupted during %s", job.Name)
		} else {
			r.log.Error("Conversion failed: %s", job.Name)
			r.logFailure(final)
		}
		removeOutputs(job)
		result.Status = StatusFailed
		result.Err = final.Err
		return
	}

	result.Status = StatusConverted
	result.Bytes = totalSize(final.Outputs)
	via := string(final.Backend)
	if result.Fallback {
		via += " (fallback)"
	}
	r.log.Success("Converted via %s in %s (%s)", via,
		time.Since(start).Round(time.Millisecond), display.FormatBytes(result.Bytes))
}

// convertFrames keys each frame as its own item. A frame that fails on
// both backends loses only its own output; the rest of the group is kept.
func (r *runner) convertFrames(ctx context.Context, job *planner.Job, result *GroupResult) {
	start := time.Now()
	var written []string
	for _, t := range job.FrameOutputs {
		if ctx.Err() != nil {
			result.Err = ctx.Err()
			break
		}
		frame := job.ForFrame(t)
		outcome := r.chain.Convert(ctx, frame)
		final := outcome.Final()
		if outcome.UsedFallback() {
			result.Fallback = true
		}
		if !outcome.OK() {
			result.FailedFrames++
			result.Err = final.Err
			if errors.Is(final.Err, context.Canceled) {
				r.log.Warn("Interrupted during %s", filepath.Base(t.Input))
			} else {
				r.log.Error("Keying failed: %s", filepath.Base(t.Input))
				r.logFailure(final)
			}
			removeOutputs(frame)
			continue
		}
		result.Backend = final.Backend
		written = append(written, final.Outputs...)
	}

	total := len(job.FrameOutputs)
	result.Bytes = totalSize(written)
	switch {
	case len(written) == total:
		result.Status = StatusConverted
		result.Err = nil
	case len(written) == 0:
		result.Status = StatusFailed
		return
	default:
		result.Status = StatusPartial
		r.log.Warn("Keyed %d of %d frame(s) of %s", len(written), total, job.Name)
		return
	}

	via := string(result.Backend)
	if result.Fallback {
		via += " (fallback used)"
	}
	r.log.Success("Keyed %d frame(s) via %s in %s (%s)", total, via,
		time.Since(start).Round(time.Millisecond), display.FormatBytes(result.Bytes))
}

// outputBase resolves case-insensitive collisions between group names that
// would write the same output.
func (r *runner) outputBase(name string) string {
	ext := ".gif"
	if r.kind == config.KindTransparentPNG {
		ext = ".png"
	}
	requested := naming.OutputPath(r.outDir, name, ext)
	resolved := r.resolver.Resolve(name, requested)
	base := naming.Stem(resolved)
	if base != name {
		r.log.Warn("  Output name collides with another sequence; writing as '%s'", base)
	}
	return base
}

func (r *runner) inspect(ctx context.Context, path string) *probe.ImageInfo {
	info, err := probeFrame(ctx, r.cfg, r.res.FFprobe, path)
	if err != nil {
		r.log.Debug(r.cfg.Verbose, "  Probe failed (continuing without frame info): %v", err)
		return nil
	}
	r.log.Debug(r.cfg.Verbose, "  Frame: %s %s %s", info.Resolution(), info.Codec, info.PixFmt)
	return info
}

// beforeFallback logs the primary failure and removes any partial output so
// the fallback starts clean.
func (r *runner) beforeFallback(job *planner.Job, primary backend.Result) {
	r.log.Warn("%s failed: %v; retrying with %s", primary.Backend, primary.Err, r.chain.Fallback.Name())
	r.logFailureDebug(primary)
	removeOutputs(job)
}

func (r *runner) logFailure(res backend.Result) {
	var be *backend.Error
	if !errors.As(res.Err, &be) {
		r.log.Error("  %v", res.Err)
		return
	}
	r.log.Error("  %v", be)
	if be.NotFound() {
		r.log.Error("  %s executable not found: %s", be.Backend, be.Args[0])
		return
	}
	if hint := backend.Hint(be.Stderr); hint != "" {
		r.log.Error("  Hint: %s", hint)
	}
	tail := be.Tail(stderrTailLines)
	if len(tail) > 0 {
		r.log.Error("Last %s output:", be.Backend)
		for _, l := range tail {
			r.log.Error("  %s", l)
		}
	}
}

// logFailureDebug shows the primary's stderr only in verbose mode; the
// fallback usually succeeds and the details are noise otherwise.
func (r *runner) logFailureDebug(res backend.Result) {
	var be *backend.Error
	if !errors.As(res.Err, &be) {
		return
	}
	if hint := backend.Hint(be.Stderr); hint != "" {
		r.log.Warn("  Hint: %s", hint)
	}
	for _, l := range be.Tail(stderrTailLines) {
		r.log.Debug(r.cfg.Verbose, "  %s", l)
	}
}

// --- File helpers ---

func usesFFmpeg(chain *backend.Chain) bool {
	if chain.Primary.Name() == check.BackendFFmpeg {
		return true
	}
	return chain.Fallback != nil && chain.Fallback.Name() == check.BackendFFmpeg
}

func allExist(paths []string) bool {
	if len(paths) == 0 {
		return false
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return false
		}
	}
	return true
}

// removeOutputs deletes partial outputs, ignoring errors.
func removeOutputs(job *planner.Job) {
	for _, p := range job.Outputs() {
		_ = os.Remove(p)
	}
}

func totalSize(paths []string) int64 {
	var n int64
	for _, p := range paths {
		if fi, err := os.Stat(p); err == nil {
			n += fi.Size()
		}
	}
	return n
}

func describeOutputs(job *planner.Job) string {
	if job.Output != "" {
		return filepath.Base(job.Output)
	}
	outs := job.Outputs()
	if len(outs) == 1 {
		return filepath.Base(outs[0])
	}
	return fmt.Sprintf("%s … %s (%d files)", filepath.Base(outs[0]), filepath.Base(outs[len(outs)-1]), len(outs))
}

// --- Logging helpers ---

func logListing(cfg *config.Config, log *logging.Logger, kind config.Kind, l *frames.Listing) {
	log.Info("Pipeline: %s", kind)
	log.Info("Found %d sequence(s) in %s", len(l.Groups), cfg.InputDir)
	if len(l.Singles) > 0 {
		log.Debug(cfg.Verbose, "Ignored single-frame base(s): %s", strings.Join(l.Singles, ", "))
	}
	if len(l.Duplicates) > 0 {
		log.Warn("Duplicate frame index, ignored: %s", strings.Join(l.Duplicates, ", "))
	}
	if l.Unmatched > 0 {
		log.Debug(cfg.Verbose, "%d %s file(s) without a _<n> frame suffix", l.Unmatched, cfg.Extension)
	}
}

func (r *runner) logBatchHeader() {
	cfg, log := r.cfg, r.log
	log.Info("Output: %s", r.outDir)

	fallback := "none"
	if r.chain.Fallback != nil {
		fallback = string(r.chain.Fallback.Name())
	}
	log.Info("Backend: %s (fallback: %s)", r.chain.Primary.Name(), fallback)

	if r.kind != config.KindTransparentPNG {
		loop := "forever"
		if cfg.Loop > 0 {
			loop = fmt.Sprintf("%d time(s)", cfg.Loop)
		}
		log.Info("Delay: %s, loop: %s, dispose: %s", display.FormatDelay(cfg.Delay), loop, cfg.Dispose)
	}
	if r.kind != config.KindGIF {
		log.Info("Transparency: %s within %d%%", cfg.KeyColor, cfg.Fuzz)
	}
	if cfg.DryRun {
		log.Info("Dry run: nothing will be written")
	}
	fmt.Println()
}

func logSummary(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	log.Info("==============================")
	if stats.Partial > 0 {
		log.Info("Done: %d converted, %d partial, %d skipped, %d failed", stats.Converted, stats.Partial, stats.Skipped, stats.Failed)
		log.Warn("  %d frame(s) could not be keyed", stats.FailedFrames)
	} else {
		log.Info("Done: %d converted, %d skipped, %d failed", stats.Converted, stats.Skipped, stats.Failed)
	}
	if n := stats.Attempted(); n > 0 && stats.Failed == n {
		log.Error("  Every attempted sequence failed; run 'texanim check' to verify the tools")
	}
	if stats.FallbackUsed > 0 {
		log.Warn("  Fallback used for %d sequence(s)", stats.FallbackUsed)
	}

	rows := make([][]string, 0, len(stats.Groups))
	for _, g := range stats.Groups {
		backendName := string(g.Backend)
		if g.Fallback {
			backendName += " (fallback)"
		}
		size := ""
		if g.Bytes > 0 {
			size = display.FormatBytes(g.Bytes)
		}
		rows = append(rows, []string{
			g.Name,
			fmt.Sprintf("%d", g.Frames),
			display.FormatFrameRange(g.First, g.Last),
			backendName,
			statusCell(g),
			size,
		})
	}
	if len(rows) > 0 {
		fmt.Println(display.RenderTable(
			[]string{"Sequence", "Frames", "Range", "Backend", "Status", "Size"},
			rows,
			[]display.Alignment{display.AlignLeft, display.AlignRight, display.AlignLeft, display.AlignLeft, display.AlignLeft, display.AlignRight},
		))
	}

	if cfg.DryRun {
		log.Info("  Output size: n/a (dry run)")
		return
	}
	log.Info("  Total output: %s in %s", display.FormatBytes(stats.OutputBytes), stats.Elapsed.Round(time.Millisecond))
}

// statusCell colors failed and partial results in the summary table.
func statusCell(g GroupResult) string {
	switch g.Status {
	case StatusFailed:
		return term.Red + string(g.Status) + term.NC
	case StatusPartial:
		return fmt.Sprintf("%s%s (%d failed)%s", term.Yellow, g.Status, g.FailedFrames, term.NC)
	}
	return string(g.Status)
}
