// Package check determines which external conversion tools are reachable
// (ImageMagick, ffmpeg, ffprobe) and prints the diagnostics shown by
// "texanim check".
//
// Probing happens once per run. The result is an explicit [Resolution] that
// callers pass to every backend invocation; nothing is cached in package
// state.
package check

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/backmassage/texanim/internal/config"
)

// MagickEnvVar names the environment variable holding an explicit path to
// the ImageMagick executable.
const MagickEnvVar = "TEXANIM_MAGICK"

// Sentinel errors returned by Probe.
var (
	ErrNoTools        = errors.New("no usable conversion tool found (install ImageMagick or ffmpeg)")
	ErrMagickNotFound = errors.New("ImageMagick not found")
	ErrFFmpegNotFound = errors.New("ffmpeg not found on PATH")
	errNotImageMagick = errors.New("not ImageMagick")
	errVersionFailed  = errors.New("version query failed")
)

// Backend identifies an external conversion tool.
type Backend string

const (
	BackendNone        Backend = ""
	BackendImageMagick Backend = "imagemagick"
	BackendFFmpeg      Backend = "ffmpeg"
)

// ProbeStep records how ImageMagick was located.
type ProbeStep int

const (
	StepNone      ProbeStep = iota
	StepMagick              // "magick -version" succeeded.
	StepConvert             // Legacy "convert -version" succeeded.
	StepEnv                 // $TEXANIM_MAGICK points at an existing file.
	StepKnownPath           // A well-known installation path exists.
)

func (s ProbeStep) String() string {
	switch s {
	case StepMagick:
		return "magick on PATH"
	case StepConvert:
		return "convert on PATH"
	case StepEnv:
		return "$" + MagickEnvVar
	case StepKnownPath:
		return "known install path"
	default:
		return "not found"
	}
}

// Resolution is the outcome of one probe: the resolved executable of each
// tool, or "" when a tool is unavailable. It is written once by Probe and
// only read afterwards.
type Resolution struct {
	Magick        string
	MagickVia     ProbeStep
	MagickVersion string
	FFmpeg        string
	FFmpegVersion string
	FFprobe       string // Optional; used for frame inspection only.
}

// Has reports whether backend b resolved.
func (r *Resolution) Has(b Backend) bool {
	if r == nil {
		return false
	}
	switch b {
	case BackendImageMagick:
		return r.Magick != ""
	case BackendFFmpeg:
		return r.FFmpeg != ""
	}
	return false
}

// Preferred returns the backend used as primary: ImageMagick when present,
// otherwise ffmpeg.
func (r *Resolution) Preferred() Backend {
	switch {
	case r.Has(BackendImageMagick):
		return BackendImageMagick
	case r.Has(BackendFFmpeg):
		return BackendFFmpeg
	}
	return BackendNone
}

// Prober runs the probe steps. The function fields are replaceable so tests
// can record the probe order without real tools installed.
type Prober struct {
	LookPath   func(file string) (string, error)
	Run        func(ctx context.Context, name string, args ...string) ([]byte, error)
	Getenv     func(key string) string
	Stat       func(name string) (os.FileInfo, error)
	KnownPaths []string
}

// NewProber returns a Prober wired to the real environment.
func NewProber() *Prober {
	return &Prober{
		LookPath:   exec.LookPath,
		Run:        runOutput,
		Getenv:     os.Getenv,
		Stat:       os.Stat,
		KnownPaths: knownMagickPaths(runtime.GOOS),
	}
}

// Probe resolves the tools allowed by mode. ImageMagick is located by, in
// order: "magick -version", "convert -version", $TEXANIM_MAGICK, then the
// known install paths; the first hit wins. ffmpeg is then queried so it can
// act as primary (no ImageMagick) or fallback. Forcing a backend skips the
// other tool entirely.
func (p *Prober) Probe(ctx context.Context, mode config.BackendMode) (*Resolution, error) {
	res := &Resolution{}

	if mode != config.BackendFFmpeg {
		path, via, version := p.probeMagick(ctx)
		res.Magick, res.MagickVia, res.MagickVersion = path, via, version
		if mode == config.BackendImageMagick && path == "" {
			return nil, ErrMagickNotFound
		}
	}

	if mode != config.BackendImageMagick {
		path, version, err := p.versionQuery(ctx, "ffmpeg")
		if err == nil {
			res.FFmpeg, res.FFmpegVersion = path, version
		}
		if mode == config.BackendFFmpeg && res.FFmpeg == "" {
			return nil, ErrFFmpegNotFound
		}
	}

	if res.Magick == "" && res.FFmpeg == "" {
		return nil, ErrNoTools
	}
	res.FFprobe = p.resolveFFprobe(res.FFmpeg)
	return res, nil
}

func (p *Prober) probeMagick(ctx context.Context) (string, ProbeStep, string) {
	if path, version, err := p.versionQuery(ctx, "magick"); err == nil {
		return path, StepMagick, version
	}
	if path, version, err := p.versionQuery(ctx, "convert"); err == nil {
		return path, StepConvert, version
	}
	if env := strings.TrimSpace(p.Getenv(MagickEnvVar)); env != "" {
		if p.isFile(env) {
			return env, StepEnv, ""
		}
	}
	for _, candidate := range p.KnownPaths {
		if p.isFile(candidate) {
			return candidate, StepKnownPath, ""
		}
	}
	return "", StepNone, ""
}

// versionQuery resolves name on PATH and runs "<name> -version", returning
// the resolved path and the first output line.
func (p *Prober) versionQuery(ctx context.Context, name string) (string, string, error) {
	path, err := p.LookPath(name)
	if err != nil {
		return "", "", err
	}
	out, err := p.Run(ctx, path, "-version")
	if err != nil {
		return "", "", fmt.Errorf("%s -version: %w", name, errVersionFailed)
	}
	line := firstLine(string(out))
	// "convert" is also a Windows filesystem utility.
	if name != "ffmpeg" && !strings.Contains(line, "ImageMagick") {
		return "", "", errNotImageMagick
	}
	return path, line, nil
}

// resolveFFprobe prefers an ffprobe next to the resolved ffmpeg, then PATH.
func (p *Prober) resolveFFprobe(ffmpeg string) string {
	if ffmpeg != "" && filepath.IsAbs(ffmpeg) {
		candidate := filepath.Join(filepath.Dir(ffmpeg), exeName("ffprobe"))
		if p.isFile(candidate) {
			return candidate
		}
	}
	if path, err := p.LookPath("ffprobe"); err == nil {
		return path
	}
	return ""
}

func (p *Prober) isFile(path string) bool {
	info, err := p.Stat(path)
	return err == nil && !info.IsDir()
}

// --- internal helpers ---

func runOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

func exeName(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}
