package main

import (
	"github.com/spf13/cobra"

	"github.com/backmassage/texanim/internal/check"
	"github.com/backmassage/texanim/internal/logging"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report which conversion tools are installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLogger(func(log *logging.Logger) error {
				parent := cmd.Context()
				if err := check.RunCheck(parent, ctx.cfg, ctx.newProber(), log); err != nil {
					// RunCheck has already logged it.
					return &reportedError{err: err}
				}
				return nil
			})
		},
	}
}
