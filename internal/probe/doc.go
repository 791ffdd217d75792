// Package probe inspects texture frames with a single ffprobe JSON call and
// returns typed dimensions and pixel format.
//
// It is used only for planning (output width, alpha handling); frames are
// never decoded in-process.
package probe
