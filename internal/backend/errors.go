package backend

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"regexp"
	"strings"

	"github.com/backmassage/texanim/internal/check"
)

// ErrTimeout marks an invocation killed by its per-invocation timeout.
var ErrTimeout = errors.New("timed out")

// Error is returned for every failed tool invocation: non-zero exit,
// executable not found, timeout, or cancellation.
type Error struct {
	Backend check.Backend
	Args    []string // Full argument vector including the executable.
	Stderr  string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Backend, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports whether the executable could not be started.
func (e *Error) NotFound() bool {
	return errors.Is(e.Err, exec.ErrNotFound) || errors.Is(e.Err, fs.ErrNotExist)
}

// Tail returns the last n non-empty stderr lines.
func (e *Error) Tail(n int) []string {
	var lines []string
	for _, l := range strings.Split(e.Stderr, "\n") {
		if l = strings.TrimRight(l, "\r "); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}

// Pre-compiled regexes for classifying tool stderr into a one-line hint.
// Checked in order by Hint; the first match wins.
var hints = []struct {
	re   *regexp.Regexp
	hint string
}{
	{
		regexp.MustCompile(`(?i)not authorized|security policy`),
		"blocked by the ImageMagick security policy (check policy.xml)",
	},
	{
		regexp.MustCompile(`(?i)no (decode|encode) delegate|NoDecodeDelegate|NoEncodeDelegate`),
		"ImageMagick was built without support for this image format",
	},
	{
		regexp.MustCompile(`(?i)Unsafe file name`),
		"the concat demuxer rejected a frame path",
	},
	{
		regexp.MustCompile(`(?i)No such filter|Unknown encoder|Unrecognized option|Option not found|Filter not found`),
		"this ffmpeg build lacks a required filter or option",
	},
	{
		regexp.MustCompile(`(?i)unable to open image|improper image header|Invalid data found when processing input|No such file or directory|Permission denied`),
		"an input frame could not be read",
	},
	{
		regexp.MustCompile(`(?i)No space left on device`),
		"the output disk is full",
	},
}

// Hint classifies common tool failures. It returns "" when nothing matches.
func Hint(stderr string) string {
	for _, h := range hints {
		if h.re.MatchString(stderr) {
			return h.hint
		}
	}
	return ""
}
