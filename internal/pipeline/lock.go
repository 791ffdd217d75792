package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another run holds the lock for the same output
// directory.
var ErrLocked = errors.New("another texanim run is writing to this output directory")

// lockPath returns the lock file for outDir. It lives in the system temp
// directory so dry runs never create the output tree.
func lockPath(outDir string) string {
	abs, err := filepath.Abs(outDir)
	if err != nil {
		abs = outDir
	}
	sum := sha256.Sum256([]byte(filepath.Clean(abs)))
	return filepath.Join(os.TempDir(), "texanim-"+hex.EncodeToString(sum[:8])+".lock")
}

// lockOutput takes a non-blocking exclusive lock for outDir. The caller
// must Unlock the returned lock.
func lockOutput(outDir string) (*flock.Flock, error) {
	lock := flock.New(lockPath(outDir))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, outDir)
	}
	return lock, nil
}
