package pipeline

import (
	"errors"
	"fmt"
	"os"

	"github.com/backmassage/texanim/internal/frames"
)

// ErrInputMissing is returned when the input directory does not exist or is
// not a directory.
var ErrInputMissing = errors.New("input directory not found")

// ValidateInput checks that dir exists and is a directory. It never creates
// anything.
func ValidateInput(dir string) error {
	fi, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrInputMissing, dir)
		}
		return fmt.Errorf("stat input: %w", err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInputMissing, dir)
	}
	return nil
}

// Discover validates dir and groups its frames. Groups are sorted by name
// for a deterministic processing order.
func Discover(dir, ext string) (*frames.Listing, error) {
	if err := ValidateInput(dir); err != nil {
		return nil, err
	}
	return frames.Scan(dir, ext)
}
