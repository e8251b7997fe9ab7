package cli

import (
	"github.com/spf13/cobra"

	"github.com/nutterthanos/OTR-FuelPrices/internal/app"
)

var showLimit int

var showCmd = &cobra.Command{
	Use:   "show <site-id>",
	Short: "Print a site's recent price entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Show(cmd.Context(), app.ShowOptions{
			SiteID: args[0],
			Limit:  showLimit,
		})
	},
}

func init() {
	showCmd.Flags().IntVar(&showLimit, "limit", 20, "Maximum entries to print")
}
