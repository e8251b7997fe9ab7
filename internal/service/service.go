package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/nutterthanos/OTR-FuelPrices/internal/fetcher"
	"github.com/nutterthanos/OTR-FuelPrices/internal/prices"
	"github.com/nutterthanos/OTR-FuelPrices/internal/sites"
	"github.com/nutterthanos/OTR-FuelPrices/internal/storage"
)

// Service orchestrates one collection pass: reconcile site listings,
// snapshot metadata, and fan out per-site price fetches into the store.
type Service struct {
	sourceSites     fetcher.SiteLister
	sourceLocations fetcher.SiteLister
	priceLister     fetcher.PriceLister
	store           storage.HistoryStore
	concurrency     int
	logger          zerolog.Logger
}

// Summary reports the outcome of one collection pass.
type Summary struct {
	Sites   int
	Fetched int
	Failed  int
	Entries int
}

// New constructs the collection service. concurrency caps the number
// of in-flight price fetches.
func New(sourceSites, sourceLocations fetcher.SiteLister, priceLister fetcher.PriceLister, store storage.HistoryStore, concurrency int, logger zerolog.Logger) *Service {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Service{
		sourceSites:     sourceSites,
		sourceLocations: sourceLocations,
		priceLister:     priceLister,
		store:           store,
		concurrency:     concurrency,
		logger:          logger.With().Str("component", "service").Logger(),
	}
}

// Collect runs one full pass. Per-site failures are recovered and
// counted, never propagated: a failing site must not cost the others
// their results. Only infrastructure-level failures (store setup,
// cancelled context) surface as errors.
func (s *Service) Collect(ctx context.Context) (Summary, error) {
	reconciled := s.reconcileSites(ctx)

	summary := Summary{Sites: len(reconciled)}
	if len(reconciled) == 0 {
		s.logger.Warn().Msg("no sites reconciled from any listing source")
		return summary, nil
	}

	if err := s.store.PersistSites(reconciled); err != nil {
		return summary, fmt.Errorf("persist sites snapshot: %w", err)
	}

	for result := range s.fanOut(ctx, reconciled) {
		if result.err != nil {
			summary.Failed++
			s.logger.Error().Err(result.err).Str("site", result.siteID).Msg("site collection failed")
			continue
		}
		summary.Fetched++
		summary.Entries += result.entries
	}

	s.logger.Info().
		Int("sites", summary.Sites).
		Int("fetched", summary.Fetched).
		Int("failed", summary.Failed).
		Int("entries", summary.Entries).
		Msg("collection pass complete")

	return summary, ctx.Err()
}

// reconcileSites fetches both listing sources and merges them. The
// sites source is always processed before the locations source so the
// last-write-wins field merge is deterministic. A source that fails or
// returns an unrecognized shape contributes zero records.
func (s *Service) reconcileSites(ctx context.Context) map[string]sites.Record {
	fromSites := s.fetchListing(ctx, s.sourceSites, sites.SourceSites)
	fromLocations := s.fetchListing(ctx, s.sourceLocations, sites.SourceLocations)
	return sites.Reconcile(fromSites, fromLocations)
}

func (s *Service) fetchListing(ctx context.Context, lister fetcher.SiteLister, src sites.Source) []sites.Record {
	raw, err := lister.FetchListing(ctx)
	if err != nil {
		s.logger.Error().Err(err).Str("source", src.Name).Msg("listing fetch failed, source contributes no sites")
		return nil
	}

	records, err := sites.ParseListing(src, raw, s.logger)
	if err != nil {
		s.logger.Error().Err(err).Str("source", src.Name).Msg("listing shape not recognized, source contributes no sites")
		return nil
	}
	return records
}

type siteResult struct {
	siteID  string
	entries int
	err     error
}

// fanOut dispatches one collection task per site, gated by a counting
// semaphore so at most `concurrency` requests are in flight. Each
// task's failure is captured in its result value and never unwinds the
// batch. Different sites never touch the same store file, so the tasks
// need no locking.
func (s *Service) fanOut(ctx context.Context, reconciled map[string]sites.Record) <-chan siteResult {
	codes := sites.Codes(reconciled)
	results := make(chan siteResult, len(codes))
	sem := make(chan struct{}, s.concurrency)

	var wg sync.WaitGroup
	for _, code := range codes {
		wg.Add(1)
		go func(code string, rec sites.Record) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results <- siteResult{siteID: code, err: ctx.Err()}
				return
			}
			defer func() { <-sem }()

			entries, err := s.collectSite(ctx, code, rec)
			results <- siteResult{siteID: code, entries: entries, err: err}
		}(code, reconciled[code])
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// collectSite fetches one site's price payload, persists it verbatim,
// and merges the normalized entries into the on-disk history. On any
// failure the existing history file is left untouched.
func (s *Service) collectSite(ctx context.Context, siteID string, rec sites.Record) (int, error) {
	payload, err := s.priceLister.FetchPrices(ctx, siteID)
	if err != nil {
		return 0, fmt.Errorf("fetch prices: %w", err)
	}

	if err := s.store.PersistRaw(siteID, payload); err != nil {
		return 0, fmt.Errorf("persist raw payload: %w", err)
	}

	entries, err := prices.ParsePayload(payload)
	if err != nil {
		return 0, fmt.Errorf("parse price payload: %w", err)
	}

	history, err := s.store.LoadHistory(siteID)
	if err != nil {
		return 0, err
	}
	history.ApplySite(rec)
	history = storage.MergeEntries(history, entries)

	if err := s.store.PersistHistory(siteID, history); err != nil {
		return 0, err
	}

	return len(entries), nil
}
