package check

import (
	"context"
	"fmt"

	"github.com/backmassage/texanim/internal/config"
	"github.com/backmassage/texanim/internal/display"
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// stays testable with a recording logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// RunCheck probes every tool regardless of cfg.Backend and prints an
// availability table. It returns ErrNoTools when nothing usable was found,
// so "texanim check" can exit non-zero.
func RunCheck(ctx context.Context, cfg *config.Config, p *Prober, log Logger) error {
	log.Info("=== System Check ===")

	res, probeErr := p.Probe(ctx, config.BackendAuto)
	if probeErr != nil {
		res = &Resolution{}
	}
	fmt.Println(display.RenderTable(
		[]string{"Tool", "Status", "Path", "Detail"},
		diagnosticRows(res, cfg),
		nil,
	))
	if probeErr != nil {
		log.Error("%v", probeErr)
		return probeErr
	}
	log.Debug(cfg.Verbose, "ImageMagick resolved via %s", res.MagickVia)

	switch res.Preferred() {
	case BackendImageMagick:
		if res.Has(BackendFFmpeg) {
			log.Success("ImageMagick is primary; ffmpeg is available as fallback")
		} else {
			log.Warn("ImageMagick only; no ffmpeg fallback available")
		}
	case BackendFFmpeg:
		log.Warn("ImageMagick not found; ffmpeg will be used for every pipeline")
	}
	if res.FFprobe == "" {
		log.Warn("ffprobe not found; frame width and alpha will not be inspected")
	}
	return nil
}

func diagnosticRows(res *Resolution, cfg *config.Config) [][]string {
	magickDetail := res.MagickVersion
	if magickDetail == "" {
		magickDetail = res.MagickVia.String()
	}
	if res.Magick == "" {
		magickDetail = fmt.Sprintf("set %s to an explicit path", MagickEnvVar)
	}
	rows := [][]string{
		{"ImageMagick", status(res.Magick), res.Magick, magickDetail},
		{"ffmpeg", status(res.FFmpeg), res.FFmpeg, res.FFmpegVersion},
		{"ffprobe", status(res.FFprobe), res.FFprobe, ""},
	}
	if cfg != nil && cfg.Backend != config.BackendAuto {
		rows = append(rows, []string{"backend", string(cfg.Backend), "", "forced by --backend"})
	}
	return rows
}

func status(path string) string {
	if path == "" {
		return "missing"
	}
	return "ok"
}
