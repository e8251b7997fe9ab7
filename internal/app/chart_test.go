package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nutterthanos/OTR-FuelPrices/internal/config"
	"github.com/nutterthanos/OTR-FuelPrices/internal/prices"
	"github.com/nutterthanos/OTR-FuelPrices/internal/storage"
)

func newTestApp(t *testing.T) (*App, *storage.FileStore) {
	t.Helper()
	dataDir := t.TempDir()

	cfg := &config.Config{}
	cfg.Store.DataDir = dataDir
	cfg.Chart.Width = 640
	cfg.Chart.Height = 360
	cfg.Chart.MaxPoints = 1000
	cfg.Chart.OutDir = filepath.Join(dataDir, "graphs")

	store, err := storage.NewFileStore(dataDir, zerolog.Nop())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	return NewApp(cfg, zerolog.Nop()), store
}

func seedHistory(t *testing.T, store *storage.FileStore, siteID string, grades ...string) {
	t.Helper()
	base := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)

	h := storage.History{SiteID: siteID, SiteName: "Test Site"}
	var entries []prices.Entry
	for _, grade := range grades {
		for i := 0; i < 5; i++ {
			entries = append(entries, prices.Entry{
				FuelGrade:  grade,
				Price:      decimal.NewFromFloat(1.5 + float64(i)*0.01),
				ObservedAt: base.Add(time.Duration(i) * time.Hour),
			})
		}
	}
	h = storage.MergeEntries(h, entries)
	if err := store.PersistHistory(siteID, h); err != nil {
		t.Fatalf("seed history: %v", err)
	}
}

func TestChartRendersPNGPerSiteAndGrade(t *testing.T) {
	a, store := newTestApp(t)
	seedHistory(t, store, "S1", "diesel", "unleaded")

	if err := a.Chart(context.Background(), ChartOptions{}); err != nil {
		t.Fatalf("chart: %v", err)
	}

	for _, name := range []string{"S1_diesel.png", "S1_unleaded.png"} {
		info, err := os.Stat(filepath.Join(a.Config.Chart.OutDir, name))
		if err != nil {
			t.Fatalf("expected chart %s: %v", name, err)
		}
		if info.Size() == 0 {
			t.Fatalf("chart %s is empty", name)
		}
	}
}

func TestChartGradeFilter(t *testing.T) {
	a, store := newTestApp(t)
	seedHistory(t, store, "S1", "diesel", "unleaded")

	opts := ChartOptions{Grades: []string{"diesel"}, CSV: true}
	if err := a.Chart(context.Background(), opts); err != nil {
		t.Fatalf("chart: %v", err)
	}

	if _, err := os.Stat(filepath.Join(a.Config.Chart.OutDir, "S1_diesel.png")); err != nil {
		t.Fatalf("requested grade should render: %v", err)
	}
	if _, err := os.Stat(filepath.Join(a.Config.Chart.OutDir, "S1_diesel.csv")); err != nil {
		t.Fatalf("csv export missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(a.Config.Chart.OutDir, "S1_unleaded.png")); !os.IsNotExist(err) {
		t.Fatal("unrequested grade should not render")
	}
}

func TestChartEmptyStore(t *testing.T) {
	a, _ := newTestApp(t)

	if err := a.Chart(context.Background(), ChartOptions{}); err != nil {
		t.Fatalf("empty store should be a no-op, not an error: %v", err)
	}
}
