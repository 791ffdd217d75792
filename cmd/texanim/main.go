// Command texanim converts numbered texture frames (<base>_<n>.png) into
// animated GIFs and transparent frames using ImageMagick, with ffmpeg as the
// fallback backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) && !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "texanim: %v\n", err)
		}
		os.Exit(1)
	}
}

// reportedError wraps an error that was already written through the
// logger, so main does not print it twice.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }
