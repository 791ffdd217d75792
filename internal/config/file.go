package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// ProjectConfigName is looked up in the working directory when no --config
// path is given.
const ProjectConfigName = "texanim.toml"

// fileConfig mirrors the TOML layout. Pointer fields distinguish "absent"
// from zero values so only keys present in the file override defaults.
type fileConfig struct {
	Input struct {
		Extension *string `toml:"extension"`
	} `toml:"input"`
	Output struct {
		GIFDir            *string `toml:"gif_dir"`
		TransparentPNGDir *string `toml:"transparent_png_dir"`
		TransparentGIFDir *string `toml:"transparent_gif_dir"`
		SkipExisting      *bool   `toml:"skip_existing"`
	} `toml:"output"`
	Animation struct {
		Delay      *int    `toml:"delay"`
		Loop       *int    `toml:"loop"`
		Dispose    *string `toml:"dispose"`
		Optimize   *bool   `toml:"optimize"`
		ScaleWidth *int    `toml:"scale_width"`
	} `toml:"animation"`
	Transparency struct {
		Fuzz           *int     `toml:"fuzz"`
		KeyColor       *string  `toml:"key_color"`
		Blend          *float64 `toml:"blend"`
		AlphaThreshold *int     `toml:"alpha_threshold"`
	} `toml:"transparency"`
	Backend struct {
		Mode       *string `toml:"mode"`
		NoFallback *bool   `toml:"no_fallback"`
		Timeout    *string `toml:"timeout"`
		KeepTemp   *bool   `toml:"keep_temp"`
	} `toml:"backend"`
	Logging struct {
		Verbose *bool   `toml:"verbose"`
		Color   *string `toml:"color"`
		File    *string `toml:"file"`
	} `toml:"logging"`
}

// LoadFile overlays the TOML file at path onto cfg. An empty path searches
// ./texanim.toml and then ~/.config/texanim/config.toml; finding neither is
// not an error. Keys whose flag was set on the command line (per changed)
// are left alone so flags keep precedence. It returns the applied path, or
// "" when no file was read.
func LoadFile(cfg *Config, path string, changed func(flag string) bool) (string, error) {
	resolved, err := resolveConfigPath(path)
	if err != nil || resolved == "" {
		return "", err
	}

	f, err := os.Open(resolved)
	if err != nil {
		return "", fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var fc fileConfig
	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(&fc); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return "", fmt.Errorf("parse config %s: %s", resolved, strict.String())
		}
		return "", fmt.Errorf("parse config %s: %w", resolved, err)
	}
	if changed == nil {
		changed = func(string) bool { return false }
	}
	if err := fc.apply(cfg, changed); err != nil {
		return "", fmt.Errorf("config %s: %w", resolved, err)
	}
	cfg.ConfigFile = resolved
	return resolved, nil
}

func (fc *fileConfig) apply(cfg *Config, changed func(string) bool) error {
	setString(&cfg.Extension, fc.Input.Extension, changed("ext"))
	setString(&cfg.GIFDir, fc.Output.GIFDir, changed("gif-dir"))
	setString(&cfg.TransparentPNGDir, fc.Output.TransparentPNGDir, changed("png-dir"))
	setString(&cfg.TransparentGIFDir, fc.Output.TransparentGIFDir, changed("tgif-dir"))
	setBool(&cfg.SkipExisting, fc.Output.SkipExisting, changed("force"))

	setInt(&cfg.Delay, fc.Animation.Delay, changed("delay"))
	setInt(&cfg.Loop, fc.Animation.Loop, changed("loop"))
	setBool(&cfg.Optimize, fc.Animation.Optimize, changed("no-optimize"))
	setInt(&cfg.ScaleWidth, fc.Animation.ScaleWidth, changed("width"))
	if fc.Animation.Dispose != nil && !changed("dispose") {
		if err := (&disposeValue{&cfg.Dispose}).Set(*fc.Animation.Dispose); err != nil {
			return err
		}
	}

	setInt(&cfg.Fuzz, fc.Transparency.Fuzz, changed("fuzz"))
	setString(&cfg.KeyColor, fc.Transparency.KeyColor, changed("key-color"))
	if fc.Transparency.Blend != nil && !changed("blend") {
		cfg.Blend = *fc.Transparency.Blend
	}
	setInt(&cfg.AlphaThreshold, fc.Transparency.AlphaThreshold, changed("alpha-threshold"))

	if fc.Backend.Mode != nil && !changed("backend") {
		if err := (&backendValue{&cfg.Backend}).Set(*fc.Backend.Mode); err != nil {
			return err
		}
	}
	setBool(&cfg.NoFallback, fc.Backend.NoFallback, changed("no-fallback"))
	setBool(&cfg.KeepTemp, fc.Backend.KeepTemp, changed("keep-temp"))
	if fc.Backend.Timeout != nil && !changed("timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(*fc.Backend.Timeout))
		if err != nil {
			return fmt.Errorf("invalid backend.timeout %q: %w", *fc.Backend.Timeout, err)
		}
		cfg.Timeout = d
	}

	setBool(&cfg.Verbose, fc.Logging.Verbose, changed("verbose"))
	setString(&cfg.LogFile, fc.Logging.File, changed("log"))
	if fc.Logging.Color != nil && !changed("color") && !changed("no-color") {
		cfg.ColorMode = ColorMode(strings.ToLower(strings.TrimSpace(*fc.Logging.Color)))
	}
	return nil
}

func setString(dst *string, v *string, flagSet bool) {
	if v != nil && !flagSet {
		*dst = *v
	}
}

func setInt(dst *int, v *int, flagSet bool) {
	if v != nil && !flagSet {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool, flagSet bool) {
	if v != nil && !flagSet {
		*dst = *v
	}
}

// resolveConfigPath returns the file to load, or "" when no file applies.
// An explicit path that does not exist is an error.
func resolveConfigPath(path string) (string, error) {
	if strings.TrimSpace(path) != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", err
		}
		if _, err := os.Stat(expanded); err != nil {
			return "", fmt.Errorf("stat config: %w", err)
		}
		return expanded, nil
	}

	candidates := []string{ProjectConfigName}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "texanim", "config.toml"))
	}
	for _, c := range candidates {
		info, err := os.Stat(c)
		if err == nil && !info.IsDir() {
			return filepath.Abs(c)
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("stat config: %w", err)
		}
	}
	return "", nil
}

func expandPath(pathValue string) (string, error) {
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	return filepath.Abs(filepath.Clean(pathValue))
}
