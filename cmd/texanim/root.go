package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/backmassage/texanim/internal/config"
)

func newRootCommand() *cobra.Command {
	return buildRootCommand(newCommandContext())
}

func buildRootCommand(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "texanim",
		Short:         "Turn numbered texture frames into animated GIFs and transparent frames",
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.loadConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path (default ./"+config.ProjectConfigName+")")
	ctx.flags = config.RegisterFlags(pf, ctx.cfg)

	for _, kind := range config.AllKinds {
		rootCmd.AddCommand(newConvertCommand(ctx, kind))
	}
	rootCmd.AddCommand(newAllCommand(ctx))
	rootCmd.AddCommand(newScanCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))

	return rootCmd
}
