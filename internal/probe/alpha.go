package probe

import "strings"

// alphaPixFmts are ffmpeg pixel formats with an alpha channel that do not
// follow the "a in the component list" naming pattern.
var alphaPixFmts = map[string]bool{
	"ya8":    true,
	"ya16be": true,
	"ya16le": true,
	"pal8":   true, // Paletted PNG/GIF may carry a transparent entry.
}

// HasAlpha reports whether the frame's pixel format carries transparency.
func (i *ImageInfo) HasAlpha() bool {
	if i == nil {
		return false
	}
	f := strings.ToLower(i.PixFmt)
	if alphaPixFmts[f] {
		return true
	}
	for _, prefix := range []string{"rgba", "bgra", "argb", "abgr", "yuva", "gbrap"} {
		if strings.HasPrefix(f, prefix) {
			return true
		}
	}
	return false
}
