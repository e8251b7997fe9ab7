package cli

import (
	"github.com/spf13/cobra"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Run one collection pass over all sites",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Collect(cmd.Context())
	},
}
