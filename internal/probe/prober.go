package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// ErrNoVideoStream is returned when ffprobe reports no decodable image stream.
var ErrNoVideoStream = errors.New("no image stream")

// Probe runs a single ffprobe JSON call against path using the ffprobe
// executable at bin.
func Probe(ctx context.Context, bin, path string) (*ImageInfo, error) {
	cmd := exec.CommandContext(ctx, bin,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		path,
	)
	// Let a killed ffprobe's children release the output pipe.
	cmd.WaitDelay = 2 * time.Second

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %q: %w", path, err)
	}

	return ParseJSON(out)
}

// ParseJSON converts raw ffprobe JSON output into an ImageInfo.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (*ImageInfo, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}
	for i := range raw.Streams {
		s := &raw.Streams[i]
		if s.CodecType != "video" {
			continue
		}
		return &ImageInfo{
			Codec:  s.CodecName,
			PixFmt: s.PixFmt,
			Width:  s.Width,
			Height: s.Height,
		}, nil
	}
	return nil, ErrNoVideoStream
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeStream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	PixFmt    string `json:"pix_fmt"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}
