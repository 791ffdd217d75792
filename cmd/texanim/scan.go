package main

import (
	"github.com/spf13/cobra"

	"github.com/backmassage/texanim/internal/config"
	"github.com/backmassage/texanim/internal/logging"
	"github.com/backmassage/texanim/internal/pipeline"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <input_dir>",
		Short: "List the frame sequences found in a directory without converting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.cfg
			cfg.InputDir = config.NormalizeDirArg(args[0])
			return ctx.withLogger(func(log *logging.Logger) error {
				if err := pipeline.ValidateInput(cfg.InputDir); err != nil {
					return report(log, err)
				}
				parent := cmd.Context()
				// ffprobe is optional here; a failed probe only drops the
				// size and alpha columns.
				var ffprobe string
				if res, err := ctx.newProber().Probe(parent, config.BackendAuto); err == nil {
					ffprobe = res.FFprobe
				} else {
					log.Debug(cfg.Verbose, "Tool probe: %v", err)
				}
				if _, err := pipeline.Scan(parent, cfg, ffprobe, log); err != nil {
					return report(log, err)
				}
				return nil
			})
		},
	}
}
