package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nutterthanos/OTR-FuelPrices/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("version=%s commit=%s built=%s\n", version.Version, version.Commit, version.BuildDate)
	},
}
