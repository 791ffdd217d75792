package backend

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// tempPrefix starts every temporary file name so leftovers are easy to find.
const tempPrefix = "texanim-"

// tempPath returns a unique path in dir for a temporary file with suffix.
func tempPath(dir, suffix string) string {
	return filepath.Join(dir, tempPrefix+uuid.NewString()+suffix)
}

// ManifestLine formats one concat demuxer entry. A single quote inside the
// path ends the quoted run and is written backslash-escaped before quoting
// resumes.
func ManifestLine(absPath string) string {
	return "file '" + strings.ReplaceAll(absPath, "'", `'\''`) + "'"
}

// writeManifest writes the concat manifest listing frames in order as
// absolute paths and returns its path.
func writeManifest(dir string, frames []string) (string, error) {
	var b strings.Builder
	for _, f := range frames {
		abs, err := filepath.Abs(f)
		if err != nil {
			return "", fmt.Errorf("resolve frame %s: %w", f, err)
		}
		b.WriteString(ManifestLine(abs))
		b.WriteByte('\n')
	}

	path := tempPath(dir, ".txt")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	return path, nil
}

// removeTemp deletes temporary files, ignoring errors.
func removeTemp(paths ...string) {
	for _, p := range paths {
		if p != "" {
			_ = os.Remove(p)
		}
	}
}
