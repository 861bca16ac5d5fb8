package main

import (
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/eiken/internal/cli"
)

func newGuideCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "guide",
		Short: "Print the grade 4 study guide",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.WriteStudyGuide(cmd.OutOrStdout())
		},
	}
}
