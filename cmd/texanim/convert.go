package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/backmassage/texanim/internal/config"
	"github.com/backmassage/texanim/internal/display"
	"github.com/backmassage/texanim/internal/logging"
	"github.com/backmassage/texanim/internal/pipeline"
)

var kindShort = map[config.Kind]string{
	config.KindGIF:            "Assemble each frame sequence into an animated GIF",
	config.KindTransparentPNG: "Key the background color out of every frame into transparent PNGs",
	config.KindTransparentGIF: "Assemble each frame sequence into a GIF with the key color made transparent",
}

func newConvertCommand(ctx *commandContext, kind config.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   string(kind) + " <input_dir> <output_dir>",
		Short: kindShort[kind],
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.convert(cmd.Context(), args, []config.Kind{kind})
		},
	}
}

func newAllCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "all <input_dir> <output_dir>",
		Short: "Run the gif, transparent-png and transparent-gif pipelines in order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.convert(cmd.Context(), args, config.AllKinds)
		},
	}
}

// convert runs the setup phases once and then each pipeline in order.
// Only setup failures are returned; per-group failures are summarized and
// the command still succeeds.
func (c *commandContext) convert(parent context.Context, args []string, kinds []config.Kind) error {
	cfg := c.cfg
	cfg.InputDir = config.NormalizeDirArg(args[0])
	cfg.OutputDir = config.NormalizeDirArg(args[1])
	if err := cfg.RequirePaths(); err != nil {
		return err
	}

	return c.withLogger(func(log *logging.Logger) error {
		display.PrintBanner()

		res, err := pipeline.Prepare(parent, cfg, c.newProber())
		if err != nil {
			return report(log, err)
		}

		inputAbs, err := absPath(cfg.InputDir)
		if err != nil {
			return report(log, fmt.Errorf("resolve input directory: %w", err))
		}
		outputAbs, err := absOutputPath(cfg.OutputDir)
		if err != nil {
			return report(log, err)
		}
		if err := cfg.ValidatePaths(inputAbs, outputAbs); err != nil {
			return report(log, err)
		}
		log.Debug(cfg.Verbose, "Input:  %s", inputAbs)
		log.Debug(cfg.Verbose, "Output: %s", outputAbs)

		ctx, stop := signalContext(parent, log)
		defer stop()

		start := time.Now()
		var all []pipeline.RunStats
		for _, kind := range kinds {
			if ctx.Err() != nil {
				break
			}
			stats, err := pipeline.Run(ctx, cfg, kind, res, log)
			if err != nil {
				return report(log, fmt.Errorf("%s: %w", kind, err))
			}
			all = append(all, stats)
		}

		if len(kinds) > 1 {
			logOverall(log, all, time.Since(start))
		}
		if err := ctx.Err(); err != nil && parent.Err() == nil {
			log.Warn("Interrupted; remaining sequences were not processed")
		}
		return nil
	})
}

// logOverall prints one line across every pipeline of an "all" run.
func logOverall(log *logging.Logger, all []pipeline.RunStats, elapsed time.Duration) {
	var converted, partial, skipped, failed int
	var bytes int64
	for _, s := range all {
		converted += s.Converted
		partial += s.Partial
		skipped += s.Skipped
		failed += s.Failed
		bytes += s.OutputBytes
	}
	log.Info("=== All pipelines: %d converted, %d partial, %d skipped, %d failed, %s written in %s ===",
		converted, partial, skipped, failed, display.FormatBytes(bytes), elapsed.Round(time.Second))
}
