package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"
)

// Show prints a site's most recent price entries.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	if opts.SiteID == "" {
		return errors.New("site id required")
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}

	history, err := store.LoadHistory(opts.SiteID)
	if err != nil {
		return err
	}
	if len(history.Entries) == 0 {
		fmt.Fprintf(os.Stdout, "no price history for site %s\n", opts.SiteID)
		return nil
	}

	sorted := history.Entries
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ObservedAt.After(sorted[j].ObservedAt)
	})
	if opts.Limit > 0 && len(sorted) > opts.Limit {
		sorted = sorted[:opts.Limit]
	}

	name := history.SiteName
	if name == "" {
		name = history.SiteID
	}
	fmt.Fprintf(os.Stdout, "%s (%s)\n", name, history.SiteID)

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Observed (UTC)\tGrade\tPrice")
	for _, entry := range sorted {
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\n",
			entry.ObservedAt.UTC().Format(time.RFC3339),
			entry.FuelGrade,
			entry.Price.StringFixed(1),
		)
	}

	return writer.Flush()
}
