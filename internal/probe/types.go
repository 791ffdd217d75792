package probe

import "strconv"

// ImageInfo holds the properties of the first video stream ffprobe reports
// for an image file.
type ImageInfo struct {
	Codec  string
	PixFmt string
	Width  int
	Height int
}

// Resolution returns "WxH", or "unknown" when dimensions are missing.
func (i *ImageInfo) Resolution() string {
	if i == nil || i.Width <= 0 || i.Height <= 0 {
		return "unknown"
	}
	return strconv.Itoa(i.Width) + "x" + strconv.Itoa(i.Height)
}
