package naming

import (
	"path/filepath"
	"strconv"
	"strings"
)

// OutputPath joins dir with base and ext. ext may be given with or without
// the leading dot.
//
//	OutputPath("out/gif", "door", "gif") == "out/gif/door.gif"
func OutputPath(dir, base, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return filepath.Join(dir, base+ext)
}

// FramePath is the per-frame output used by the transparent-png pipeline:
// <dir>/<base>_<index><ext>.
func FramePath(dir, base string, index int, ext string) string {
	return OutputPath(dir, base+"_"+strconv.Itoa(index), ext)
}

// Stem returns the file name of path without directory or extension.
func Stem(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
