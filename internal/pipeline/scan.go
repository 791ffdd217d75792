package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/backmassage/texanim/internal/config"
	"github.com/backmassage/texanim/internal/display"
	"github.com/backmassage/texanim/internal/frames"
	"github.com/backmassage/texanim/internal/logging"
	"github.com/backmassage/texanim/internal/probe"
	"github.com/backmassage/texanim/internal/term"
)

// scanRow holds the per-group data for the scan table.
type scanRow struct {
	Name   string
	Frames int
	Range  string
	Gaps   int
	Size   string
	Alpha  string
}

// Scan groups the input frames and prints the sequences a conversion run
// would process. When ffprobe is non-empty, the first frame of each group
// is inspected for dimensions and alpha. Nothing is written.
func Scan(ctx context.Context, cfg *config.Config, ffprobe string, log *logging.Logger) (*frames.Listing, error) {
	listing, err := Discover(cfg.InputDir, cfg.Extension)
	if err != nil {
		return nil, err
	}
	if len(listing.Groups) == 0 {
		log.Warn("No frame sequences found in %s", cfg.InputDir)
		logScanExtras(cfg, log, listing)
		return listing, nil
	}

	total := len(listing.Groups)
	log.Info("Scanning %d sequence(s) in %s …", total, cfg.InputDir)

	isTTY := ffprobe != "" && term.IsTerminal(os.Stdout)
	rows := make([]scanRow, 0, total)
	for i, g := range listing.Groups {
		if ctx.Err() != nil {
			if isTTY {
				clearProgress()
			}
			log.Warn("Interrupted")
			return listing, ctx.Err()
		}

		row := scanRow{
			Name:   g.Name,
			Frames: len(g.Frames),
			Range:  display.FormatFrameRange(g.First().Index, g.Last().Index),
			Gaps:   g.Gaps(),
			Size:   "-",
			Alpha:  "-",
		}
		if ffprobe != "" {
			printProgress(isTTY, i+1, total, g.Name)
			info, err := probeFrame(ctx, cfg, ffprobe, g.First().Path)
			if err != nil {
				if isTTY {
					clearProgress()
				}
				log.Warn("Skip probe: %s (%v)", g.First().Name, err)
			} else {
				row.Size = info.Resolution()
				row.Alpha = yesNo(info.HasAlpha())
			}
		}
		rows = append(rows, row)
	}
	if isTTY {
		clearProgress()
	}

	printScanTable(rows)
	logScanExtras(cfg, log, listing)
	return listing, nil
}

func printScanTable(rows []scanRow) {
	out := make([][]string, len(rows))
	for i, r := range rows {
		gaps := ""
		if r.Gaps > 0 {
			gaps = term.Yellow + fmt.Sprintf("%d", r.Gaps) + term.NC
		}
		out[i] = []string{r.Name, fmt.Sprintf("%d", r.Frames), r.Range, gaps, r.Size, r.Alpha}
	}
	fmt.Println(display.RenderTable(
		[]string{"Sequence", "Frames", "Range", "Gaps", "Size", "Alpha"},
		out,
		[]display.Alignment{display.AlignLeft, display.AlignRight, display.AlignLeft, display.AlignRight},
	))
}

func logScanExtras(cfg *config.Config, log *logging.Logger, l *frames.Listing) {
	if len(l.Groups) > 0 {
		var n int
		for _, g := range l.Groups {
			n += len(g.Frames)
		}
		log.Info("%d sequence(s), %d frame(s)", len(l.Groups), n)
	}
	if len(l.Singles) > 0 {
		log.Info("Single-frame base(s) not animated: %s", strings.Join(l.Singles, ", "))
	}
	if len(l.Duplicates) > 0 {
		log.Warn("Duplicate frame index, ignored: %s", strings.Join(l.Duplicates, ", "))
	}
	if l.Unmatched > 0 {
		log.Info("%d %s file(s) without a _<n> frame suffix", l.Unmatched, cfg.Extension)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// printProgress shows a live probe counter. On a TTY it writes an
// inline \r-overwritten line; otherwise it is a no-op.
func printProgress(isTTY bool, current, total int, name string) {
	if !isTTY {
		return
	}
	pct := current * 100 / total
	status := fmt.Sprintf("  Probing [%d/%d] %d%% ", current, total, pct)

	status += truncateName(name, 40)

	// Pad to 80 columns to overwrite previous longer lines, then \r.
	if n := utf8.RuneCountInString(status); n < 80 {
		status += strings.Repeat(" ", 80-n)
	}
	fmt.Fprintf(os.Stdout, "\r%s", status)
}

// truncateName shortens name to at most max runes, marking the cut with
// an ellipsis.
func truncateName(name string, max int) string {
	if utf8.RuneCountInString(name) <= max {
		return name
	}
	r := []rune(name)
	return string(r[:max-1]) + "…"
}

// probeFrame runs ffprobe on path under the per-invocation timeout.
func probeFrame(ctx context.Context, cfg *config.Config, ffprobe, path string) (*probe.ImageInfo, error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	return probe.Probe(ctx, ffprobe, path)
}

// clearProgress erases the inline progress line on a TTY.
func clearProgress() {
	fmt.Fprintf(os.Stdout, "\r%s\r", strings.Repeat(" ", 80))
}
