package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/nutterthanos/OTR-FuelPrices/internal/config"
	"github.com/nutterthanos/OTR-FuelPrices/internal/fetcher"
	"github.com/nutterthanos/OTR-FuelPrices/internal/scheduler"
	"github.com/nutterthanos/OTR-FuelPrices/internal/service"
	"github.com/nutterthanos/OTR-FuelPrices/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) openStore() (*storage.FileStore, error) {
	return storage.NewFileStore(a.Config.Store.DataDir, a.Logger)
}

// newService wires the fetchers and store into a collection service.
// The credential check happens here, before any network activity.
func (a *App) newService() (*service.Service, error) {
	if err := a.Config.RequireAuthToken(); err != nil {
		return nil, err
	}

	store, err := a.openStore()
	if err != nil {
		return nil, err
	}

	client := fetcher.NewClient(fetcher.Options{
		AuthToken:      a.Config.API.AuthToken,
		UserAgent:      a.Config.API.UserAgent,
		AcceptEncoding: a.Config.API.AcceptEncoding,
		Timeout:        a.Config.API.RequestTimeout,
	}, a.Logger)

	sitesSource := fetcher.NewListing(client, fetcher.ListingOptions{URL: a.Config.API.SitesURL})
	locationsSource := fetcher.NewListing(client, fetcher.ListingOptions{URL: a.Config.API.LocationsURL, QueryAuth: true})
	priceSource := fetcher.NewPrices(client, a.Config.API.PriceURL)

	return service.New(sitesSource, locationsSource, priceSource, store, a.Config.Fetch.Concurrency, a.Logger), nil
}

// Collect executes one collection pass.
func (a *App) Collect(ctx context.Context) error {
	svc, err := a.newService()
	if err != nil {
		return err
	}

	summary, err := svc.Collect(ctx)
	if err != nil {
		return err
	}
	if summary.Sites > 0 && summary.Fetched == 0 {
		return fmt.Errorf("all %d site fetches failed", summary.Sites)
	}
	return nil
}

// Watch runs collection passes on the configured interval until
// interrupted.
func (a *App) Watch(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc, err := a.newService()
	if err != nil {
		return err
	}

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Scheduler.Interval,
		AlignToStart: a.Config.Scheduler.AlignToBucket,
		StartupDelay: a.Config.Scheduler.StartupDelay,
	}, a.Logger)

	a.Logger.Info().Dur("interval", a.Config.Scheduler.Interval).Msg("starting collection loop")
	err = sched.Run(ctx, func(ctx context.Context, _ time.Time) error {
		_, err := svc.Collect(ctx)
		return err
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("collection loop terminated with error")
		return err
	}

	a.Logger.Info().Msg("collection loop stopped")
	return nil
}

// ChartOptions configure the chart command.
type ChartOptions struct {
	Sites     []string
	Grades    []string
	From      *time.Time
	To        *time.Time
	OutDir    string
	CSV       bool
	MaxPoints int
}

// ShowOptions configure the show command.
type ShowOptions struct {
	SiteID string
	Limit  int
}
