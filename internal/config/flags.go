package config

// This file registers CLI flags on a pflag.FlagSet (the cobra root command's
// persistent flags). Flags are grouped into animation, transparency, backend,
// behavior, and display. Negated flags (e.g. --no-optimize) are applied after
// parsing so Config defaults hold unless set.

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// Flags ties a FlagSet to the Config it writes into, plus the negated
// values that are folded in by [Flags.Apply].
type Flags struct {
	fs      *pflag.FlagSet
	cfg     *Config
	negated negatedFlags
}

// negatedFlags holds boolean flags that are applied after Parse.
// These invert a default (e.g. noOptimize -> Optimize=false).
type negatedFlags struct {
	noOptimize bool
	force      bool
	forceColor bool
	noColor    bool
}

// RegisterFlags defines every configuration flag on fs, bound to cfg.
// Defaults shown in help come from cfg's current values.
func RegisterFlags(fs *pflag.FlagSet, cfg *Config) *Flags {
	f := &Flags{fs: fs, cfg: cfg}
	defineInputFlags(fs, cfg)
	defineAnimationFlags(fs, cfg, &f.negated)
	defineTransparencyFlags(fs, cfg)
	defineBackendFlags(fs, cfg)
	defineBehaviorFlags(fs, cfg, &f.negated)
	defineDisplayFlags(fs, cfg, &f.negated)
	return f
}

// Changed reports whether the named flag was set on the command line.
func (f *Flags) Changed(name string) bool {
	fl := f.fs.Lookup(name)
	return fl != nil && fl.Changed
}

// Apply copies negated flag values into the config (e.g. --force ->
// SkipExisting=false). Call after parsing and after any file overlay.
func (f *Flags) Apply() {
	applyNegatedFlags(f.cfg, &f.negated)
}

// defineInputFlags registers --ext and the per-pipeline output directory names.
func defineInputFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.Extension, "ext", "e", cfg.Extension, "Frame file extension")
	fs.StringVar(&cfg.GIFDir, "gif-dir", cfg.GIFDir, "Output subdirectory for the gif pipeline")
	fs.StringVar(&cfg.TransparentPNGDir, "png-dir", cfg.TransparentPNGDir, "Output subdirectory for the transparent-png pipeline")
	fs.StringVar(&cfg.TransparentGIFDir, "tgif-dir", cfg.TransparentGIFDir, "Output subdirectory for the transparent-gif pipeline")
}

// defineAnimationFlags registers --delay, --loop, --dispose, --no-optimize.
func defineAnimationFlags(fs *pflag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.IntVar(&cfg.Delay, "delay", cfg.Delay, "Inter-frame delay in centiseconds")
	fs.IntVar(&cfg.Loop, "loop", cfg.Loop, "Play count (0 = loop forever)")
	fs.Var(&disposeValue{&cfg.Dispose}, "dispose", "Frame disposal: previous | background | none")
	fs.BoolVar(&n.noOptimize, "no-optimize", false, "Skip -coalesce -layers Optimize")
	fs.IntVar(&cfg.ScaleWidth, "width", cfg.ScaleWidth, "ffmpeg output width (0 = frame width)")
}

// defineTransparencyFlags registers --fuzz, --key-color, --blend, --alpha-threshold.
func defineTransparencyFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.IntVar(&cfg.Fuzz, "fuzz", cfg.Fuzz, "Keying tolerance in percent")
	fs.StringVar(&cfg.KeyColor, "key-color", cfg.KeyColor, "Color keyed to transparent")
	fs.Float64Var(&cfg.Blend, "blend", cfg.Blend, "ffmpeg colorkey blend (0-1)")
	fs.IntVar(&cfg.AlphaThreshold, "alpha-threshold", cfg.AlphaThreshold, "ffmpeg paletteuse alpha threshold (0-255)")
}

// defineBackendFlags registers --backend, --no-fallback, --timeout, --keep-temp.
func defineBackendFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.VarP(&backendValue{&cfg.Backend}, "backend", "b", "Backend: auto | imagemagick | ffmpeg")
	fs.BoolVar(&cfg.NoFallback, "no-fallback", cfg.NoFallback, "Do not retry failed items with the fallback backend")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-invocation time limit (0 = none)")
	fs.BoolVar(&cfg.KeepTemp, "keep-temp", cfg.KeepTemp, "Keep ffmpeg manifest and palette files")
}

// defineBehaviorFlags registers --dry-run and --force.
func defineBehaviorFlags(fs *pflag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVarP(&cfg.DryRun, "dry-run", "d", cfg.DryRun, "Preview only; do not write outputs")
	fs.BoolVarP(&n.force, "force", "f", false, "Overwrite existing output files")
}

// defineDisplayFlags registers --color, --no-color, verbose, --log.
func defineDisplayFlags(fs *pflag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&n.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")
	fs.StringVarP(&cfg.LogFile, "log", "l", cfg.LogFile, "Append logs to file")
}

// applyNegatedFlags copies negated and override flag values into cfg.
func applyNegatedFlags(cfg *Config, n *negatedFlags) {
	if n.noOptimize {
		cfg.Optimize = false
	}
	if n.force {
		cfg.SkipExisting = false
	}
	if n.noColor {
		cfg.ColorMode = ColorNever
	} else if n.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// pflag.Value adapters so enum types (Dispose, BackendMode) work with fs.Var.

type disposeValue struct{ p *Dispose }

func (d *disposeValue) String() string { return string(*d.p) }
func (d *disposeValue) Type() string   { return "dispose" }
func (d *disposeValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "previous":
		*d.p = DisposePrevious
	case "background":
		*d.p = DisposeBackground
	case "none":
		*d.p = DisposeNone
	default:
		return fmt.Errorf("invalid dispose %q (use 'previous', 'background' or 'none')", s)
	}
	return nil
}

type backendValue struct{ p *BackendMode }

func (b *backendValue) String() string { return string(*b.p) }
func (b *backendValue) Type() string   { return "backend" }
func (b *backendValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "auto":
		*b.p = BackendAuto
	case "imagemagick", "magick":
		*b.p = BackendImageMagick
	case "ffmpeg":
		*b.p = BackendFFmpeg
	default:
		return fmt.Errorf("invalid backend %q (use 'auto', 'imagemagick' or 'ffmpeg')", s)
	}
	return nil
}
