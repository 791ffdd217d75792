// Package config holds runtime configuration: defaults, the optional TOML
// file overlay, CLI flag registration, and validation.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// --- Enum types for validated string fields ---

// Kind selects one of the conversion pipelines.
type Kind string

const (
	KindGIF            Kind = "gif"             // Opaque animated GIF per sequence.
	KindTransparentPNG Kind = "transparent-png" // Near-black keyed to alpha, one PNG per frame.
	KindTransparentGIF Kind = "transparent-gif" // Keyed frames animated into one GIF per sequence.
)

// AllKinds lists the pipelines in the order "all" runs them.
var AllKinds = []Kind{KindGIF, KindTransparentPNG, KindTransparentGIF}

// BackendMode restricts which external tool may be used.
type BackendMode string

const (
	BackendAuto        BackendMode = "auto"        // ImageMagick first, ffmpeg as fallback (default).
	BackendImageMagick BackendMode = "imagemagick" // ImageMagick only.
	BackendFFmpeg      BackendMode = "ffmpeg"      // ffmpeg only.
)

// Dispose is the GIF frame disposal method passed to ImageMagick.
type Dispose string

const (
	DisposePrevious   Dispose = "previous" // Default.
	DisposeBackground Dispose = "background"
	DisposeNone       Dispose = "none"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds all runtime settings. It is populated by [DefaultConfig],
// overlaid by [LoadFile], then mutated by the registered flags before being
// passed (by pointer) to packages that need it.
type Config struct {
	// Paths (set from positional args).
	InputDir  string
	OutputDir string

	// Per-pipeline output subdirectories, relative to OutputDir.
	GIFDir            string // Default: "gif".
	TransparentPNGDir string // Default: "transparent_png".
	TransparentGIFDir string // Default: "transparent_gif".

	// Input matching.
	Extension string // Default: ".png".

	// Animation.
	Delay    int     // Inter-frame delay in centiseconds. Default: 10.
	Loop     int     // Play count; 0 loops forever. Default: 0.
	Dispose  Dispose // Default: "previous".
	Optimize bool    // Default: true. -coalesce -layers Optimize (gif pipeline only).

	// Transparency keying.
	Fuzz           int     // Color distance tolerance in percent. Default: 10.
	KeyColor       string  // Color keyed to transparent. Default: "black".
	Blend          float64 // ffmpeg colorkey blend. Default: 0.0.
	AlphaThreshold int     // ffmpeg paletteuse alpha_threshold. Default: 128.

	// ffmpeg palette pass.
	ScaleWidth int // Output width; 0 keeps the frame width. Default: 0.

	// Backend selection and execution.
	Backend    BackendMode   // Default: "auto".
	NoFallback bool          // Disable the fallback backend.
	Timeout    time.Duration // Per-invocation limit. Default: 5m.
	KeepTemp   bool          // Keep ffmpeg manifest/palette files.

	// Behavior flags.
	DryRun       bool
	SkipExisting bool // Default: true. Cleared by --force.

	// Display and logging.
	Verbose   bool
	ColorMode ColorMode // Default: "auto".
	LogFile   string    // Optional log file path.

	// ConfigFile is the TOML file that was applied, if any.
	ConfigFile string
}

// DefaultConfig returns a Config with all defaults. Used as the base before
// the config file and CLI flags apply overrides.
func DefaultConfig() Config {
	return Config{
		GIFDir:            "gif",
		TransparentPNGDir: "transparent_png",
		TransparentGIFDir: "transparent_gif",
		Extension:         ".png",
		Delay:             10,
		Loop:              0,
		Dispose:           DisposePrevious,
		Optimize:          true,
		Fuzz:              10,
		KeyColor:          "black",
		Blend:             0,
		AlphaThreshold:    128,
		ScaleWidth:        0,
		Backend:           BackendAuto,
		NoFallback:        false,
		Timeout:           5 * time.Minute,
		DryRun:            false,
		SkipExisting:      true,
		Verbose:           false,
		ColorMode:         ColorAuto,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// NormalizeExtension lowercases ext and ensures a leading dot.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Validate checks enum fields and numeric ranges. Paths are validated by the
// commands that need them ([Config.RequirePaths]).
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendAuto, BackendImageMagick, BackendFFmpeg:
		// valid
	default:
		return errors.New("invalid backend (use 'auto', 'imagemagick' or 'ffmpeg')")
	}

	switch c.Dispose {
	case DisposePrevious, DisposeBackground, DisposeNone:
		// valid
	default:
		return errors.New("invalid dispose (use 'previous', 'background' or 'none')")
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	c.Extension = NormalizeExtension(c.Extension)
	if c.Extension == "" || c.Extension == "." {
		return errors.New("extension must not be empty")
	}
	if c.Delay <= 0 {
		return fmt.Errorf("delay must be a positive number of centiseconds (got %d)", c.Delay)
	}
	if c.Loop < 0 {
		return fmt.Errorf("loop must be 0 (forever) or a positive count (got %d)", c.Loop)
	}
	if c.Fuzz < 0 || c.Fuzz > 100 {
		return fmt.Errorf("fuzz must be between 0 and 100 percent (got %d)", c.Fuzz)
	}
	if strings.TrimSpace(c.KeyColor) == "" {
		return errors.New("key color must not be empty")
	}
	if c.Blend < 0 || c.Blend > 1 {
		return fmt.Errorf("blend must be between 0 and 1 (got %g)", c.Blend)
	}
	if c.AlphaThreshold < 0 || c.AlphaThreshold > 255 {
		return fmt.Errorf("alpha threshold must be between 0 and 255 (got %d)", c.AlphaThreshold)
	}
	if c.ScaleWidth < 0 {
		return fmt.Errorf("scale width must not be negative (got %d)", c.ScaleWidth)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative (got %s)", c.Timeout)
	}
	for _, d := range []string{c.GIFDir, c.TransparentPNGDir, c.TransparentGIFDir} {
		if strings.TrimSpace(d) == "" || filepath.IsAbs(d) {
			return fmt.Errorf("pipeline directory %q must be a non-empty relative path", d)
		}
	}
	return nil
}

// RequirePaths reports an error unless both input and output directories
// are set.
func (c *Config) RequirePaths() error {
	if c.InputDir == "" || c.OutputDir == "" {
		return errors.New("need exactly input_dir and output_dir")
	}
	return nil
}

// PipelineDir returns the output directory for one pipeline.
func (c *Config) PipelineDir(kind Kind) string {
	switch kind {
	case KindTransparentPNG:
		return filepath.Join(c.OutputDir, c.TransparentPNGDir)
	case KindTransparentGIF:
		return filepath.Join(c.OutputDir, c.TransparentGIFDir)
	default:
		return filepath.Join(c.OutputDir, c.GIFDir)
	}
}

// ValidatePaths ensures the resolved output directory is not inside (or equal
// to) the resolved input directory, so generated files never show up as
// frames on a later run. Both arguments must be absolute, symlink-resolved
// paths.
func (c *Config) ValidatePaths(inputAbs, outputAbs string) error {
	sep := string(filepath.Separator)
	if outputAbs == inputAbs || strings.HasPrefix(outputAbs+sep, inputAbs+sep) {
		return errors.New("output directory must not be inside input directory")
	}
	return nil
}
