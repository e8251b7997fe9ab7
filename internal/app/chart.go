package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/nutterthanos/OTR-FuelPrices/internal/prices"
	"github.com/nutterthanos/OTR-FuelPrices/internal/storage"
)

// Chart renders one price-over-time PNG per site and fuel grade from
// the store, plus an optional CSV alongside each chart. Sites default
// to every site with a persisted history; grades default to every
// grade observed for that site. Empty series are skipped.
func (a *App) Chart(ctx context.Context, opts ChartOptions) error {
	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)
	if opts.OutDir == "" {
		opts.OutDir = a.Config.Chart.OutDir
	}
	if opts.From != nil && opts.To != nil && !opts.From.Before(*opts.To) {
		return errors.New("from must be before to")
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}

	siteIDs := opts.Sites
	if len(siteIDs) == 0 {
		siteIDs, err = store.ListSites()
		if err != nil {
			return err
		}
	}
	if len(siteIDs) == 0 {
		a.Logger.Info().Msg("no site histories found, nothing to chart")
		return nil
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return fmt.Errorf("create chart output directory: %w", err)
	}

	rendered := 0
	for _, siteID := range siteIDs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		history, err := store.LoadHistory(siteID)
		if err != nil {
			a.Logger.Error().Err(err).Str("site", siteID).Msg("failed to load history, skipping")
			continue
		}

		grades := opts.Grades
		if len(grades) == 0 {
			grades = gradesOf(history)
		}

		for _, grade := range grades {
			series := filterEntries(history.Entries, grade, opts.From, opts.To)
			// go-chart needs at least two points for a continuous series.
			if len(series) < 2 {
				continue
			}
			series = downsampleEntries(series, opts.MaxPoints)

			base := filepath.Join(opts.OutDir, fmt.Sprintf("%s_%s", siteID, grade))
			if err := writePriceChart(base+".png", history, grade, series, a.Config.Chart.Width, a.Config.Chart.Height); err != nil {
				a.Logger.Error().Err(err).Str("site", siteID).Str("grade", grade).Msg("chart render failed")
				continue
			}
			if opts.CSV {
				if err := writePriceCSV(base+".csv", series); err != nil {
					a.Logger.Error().Err(err).Str("site", siteID).Str("grade", grade).Msg("csv export failed")
					continue
				}
			}
			rendered++
		}
	}

	a.Logger.Info().Int("charts", rendered).Str("dir", opts.OutDir).Msg("chart rendering complete")
	return nil
}

func gradesOf(history storage.History) []string {
	seen := make(map[string]struct{})
	for _, entry := range history.Entries {
		seen[entry.FuelGrade] = struct{}{}
	}
	grades := make([]string, 0, len(seen))
	for grade := range seen {
		grades = append(grades, grade)
	}
	sort.Strings(grades)
	return grades
}

func filterEntries(entries []prices.Entry, grade string, from, to *time.Time) []prices.Entry {
	filtered := make([]prices.Entry, 0, len(entries))
	for _, entry := range entries {
		if entry.FuelGrade != grade {
			continue
		}
		if from != nil && entry.ObservedAt.Before(*from) {
			continue
		}
		if to != nil && !entry.ObservedAt.Before(*to) {
			continue
		}
		filtered = append(filtered, entry)
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].ObservedAt.Before(filtered[j].ObservedAt)
	})
	return filtered
}

func downsampleEntries(entries []prices.Entry, max int) []prices.Entry {
	if max <= 0 || len(entries) <= max {
		return entries
	}

	result := make([]prices.Entry, 0, max)
	step := float64(len(entries)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(entries) {
			idx = len(entries) - 1
		}
		result = append(result, entries[idx])
	}
	return result
}

func writePriceChart(path string, history storage.History, grade string, entries []prices.Entry, width, height int) error {
	x := make([]time.Time, len(entries))
	y := make([]float64, len(entries))
	for i, entry := range entries {
		x[i] = entry.ObservedAt
		y[i] = entry.Price.InexactFloat64()
	}

	title := history.SiteName
	if title == "" {
		title = history.SiteID
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("Fuel prices for %s (%s)", title, grade),
		Width:  width,
		Height: height,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: "Price",
			ValueFormatter: func(v interface{}) string {
				return chart.FloatValueFormatterWithFormat(v, "%.1f")
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    grade,
				XValues: x,
				YValues: y,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func writePriceCSV(path string, entries []prices.Entry) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"observed_at", "fuel_grade", "price"}); err != nil {
		return err
	}
	for _, entry := range entries {
		record := []string{
			entry.ObservedAt.Format(time.RFC3339),
			entry.FuelGrade,
			entry.Price.String(),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return writer.Error()
}
