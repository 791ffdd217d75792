package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/backmassage/texanim/internal/check"
	"github.com/backmassage/texanim/internal/config"
	"github.com/backmassage/texanim/internal/logging"
)

// commandContext carries the configuration shared by every subcommand.
type commandContext struct {
	cfg        *config.Config
	flags      *config.Flags
	configFlag string

	// newProber is replaceable so tests control which tools are found.
	newProber func() *check.Prober
}

func newCommandContext() *commandContext {
	cfg := config.DefaultConfig()
	return &commandContext{
		cfg:       &cfg,
		newProber: check.NewProber,
	}
}

// loadConfig overlays the TOML file, folds in negated flags, and validates.
// Flags set on the command line win over file values.
func (c *commandContext) loadConfig() error {
	if _, err := config.LoadFile(c.cfg, c.configFlag, c.flags.Changed); err != nil {
		return err
	}
	c.flags.Apply()
	return c.cfg.Validate()
}

// withLogger opens the logger for one command and closes it afterwards.
func (c *commandContext) withLogger(fn func(log *logging.Logger) error) error {
	log, err := logging.NewLogger(c.cfg)
	if err != nil {
		return err
	}
	defer log.Close()
	if c.cfg.ConfigFile != "" {
		log.Debug(c.cfg.Verbose, "Config: %s", c.cfg.ConfigFile)
	}
	return fn(log)
}

// signalContext cancels on SIGINT/SIGTERM so the pipeline stops between
// groups.
func signalContext(parent context.Context, log *logging.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Received interrupt, finishing current sequence…")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}

// report logs err and marks it as already shown.
func report(log *logging.Logger, err error) error {
	if err == nil {
		return nil
	}
	log.Error("%v", err)
	return &reportedError{err: err}
}

// absPath returns the absolute, symlink-resolved path for safe comparison
// of input vs output directory hierarchies.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// absOutputPath resolves an output directory that may not exist yet by
// resolving its deepest existing ancestor.
func absOutputPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	var missing []string
	dir := abs
	for {
		resolved, err := filepath.EvalSymlinks(dir)
		if err == nil {
			return filepath.Join(append([]string{resolved}, missing...)...), nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("resolve output path: %w", err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		missing = append([]string{filepath.Base(dir)}, missing...)
		dir = parent
	}
}
