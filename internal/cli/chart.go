package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nutterthanos/OTR-FuelPrices/internal/app"
)

var (
	chartSites     []string
	chartGrades    []string
	chartFrom      string
	chartTo        string
	chartOutDir    string
	chartCSV       bool
	chartMaxPoints int
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render price-over-time charts per site and fuel grade",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ChartOptions{
			Sites:     chartSites,
			Grades:    chartGrades,
			OutDir:    chartOutDir,
			CSV:       chartCSV,
			MaxPoints: chartMaxPoints,
		}

		if chartFrom != "" {
			from, err := time.Parse(time.RFC3339, chartFrom)
			if err != nil {
				return fmt.Errorf("invalid --from value: %w", err)
			}
			opts.From = &from
		}

		if chartTo != "" {
			to, err := time.Parse(time.RFC3339, chartTo)
			if err != nil {
				return fmt.Errorf("invalid --to value: %w", err)
			}
			opts.To = &to
		}

		return getApp().Chart(cmd.Context(), opts)
	},
}

func init() {
	chartCmd.Flags().StringSliceVar(&chartSites, "site", nil, "Site identifiers to chart (default: all with history)")
	chartCmd.Flags().StringSliceVar(&chartGrades, "grade", nil, "Fuel grade codes to chart (default: all observed)")
	chartCmd.Flags().StringVar(&chartFrom, "from", "", "Start timestamp (RFC3339, inclusive)")
	chartCmd.Flags().StringVar(&chartTo, "to", "", "End timestamp (RFC3339, exclusive)")
	chartCmd.Flags().StringVar(&chartOutDir, "out", "", "Output directory (defaults to config)")
	chartCmd.Flags().BoolVar(&chartCSV, "csv", false, "Also write a CSV next to each chart")
	chartCmd.Flags().IntVar(&chartMaxPoints, "max-points", 0, "Maximum data points per chart (defaults to config)")
}
