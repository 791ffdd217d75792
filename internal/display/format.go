package display

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// FormatBytes returns a human-readable IEC size (e.g. "1.5 KiB", "700 MiB").
func FormatBytes(bytes int64) string {
	if bytes < 0 {
		return "-" + humanize.IBytes(uint64(-bytes))
	}
	return humanize.IBytes(uint64(bytes))
}

// FormatDelay renders a centisecond frame delay with its frame rate
// (e.g. "100 ms (10 fps)").
func FormatDelay(centiseconds int) string {
	if centiseconds <= 0 {
		return "n/a"
	}
	return fmt.Sprintf("%d ms (%s fps)", centiseconds*10, humanize.FtoaWithDigits(100/float64(centiseconds), 2))
}

// FormatFrameRange returns "first-last" for a frame index range, or the
// single index when they match.
func FormatFrameRange(first, last int) string {
	if first == last {
		return fmt.Sprintf("%d", first)
	}
	return fmt.Sprintf("%d-%d", first, last)
}
