package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nutterthanos/OTR-FuelPrices/internal/prices"
	"github.com/nutterthanos/OTR-FuelPrices/internal/sites"
)

const (
	rawDirName     = "raw"
	historyDirName = "history"
	sitesFileName  = "sites.json"
	rawSuffix      = "_fuelprices.json"
)

// FileStore persists site metadata, verbatim payloads, and merged price
// histories as flat JSON files under one data directory:
//
//	<dir>/sites.json
//	<dir>/raw/<site>_fuelprices.json
//	<dir>/history/<site>.json
//
// The site identifier is the stable file key across runs. Writes
// replace whole files via a temp-file rename, so a reader never
// observes a partially written file.
type FileStore struct {
	dir    string
	logger zerolog.Logger
}

// NewFileStore creates the directory layout and returns a store.
func NewFileStore(dir string, logger zerolog.Logger) (*FileStore, error) {
	for _, sub := range []string{dir, filepath.Join(dir, rawDirName), filepath.Join(dir, historyDirName)} {
		if err := os.MkdirAll(sub, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", sub, err)
		}
	}
	return &FileStore{dir: dir, logger: logger.With().Str("component", "file_store").Logger()}, nil
}

// LoadHistory returns the site's persisted history, or an empty
// skeleton when the site has never been fetched.
func (s *FileStore) LoadHistory(siteID string) (History, error) {
	data, err := os.ReadFile(s.historyPath(siteID))
	if errors.Is(err, fs.ErrNotExist) {
		return History{SiteID: siteID}, nil
	}
	if err != nil {
		return History{}, fmt.Errorf("load history for site %s: %w", siteID, err)
	}

	var h History
	if err := json.Unmarshal(data, &h); err != nil {
		return History{}, fmt.Errorf("decode history for site %s: %w", siteID, err)
	}
	if h.SiteID == "" {
		h.SiteID = siteID
	}
	return h, nil
}

// MergeEntries unions the history's entries with incoming ones by
// composite (observed-at, fuel-grade) key. Incoming entries win ties,
// so re-fetching the same observation overwrites with the newest value
// and merging the same batch twice is a no-op. The merged set is kept
// sorted by time then grade so persisted files diff cleanly.
func MergeEntries(h History, incoming []prices.Entry) History {
	byKey := make(map[string]prices.Entry, len(h.Entries)+len(incoming))
	for _, entry := range h.Entries {
		byKey[entry.Key()] = entry
	}
	for _, entry := range incoming {
		byKey[entry.Key()] = entry
	}

	merged := make([]prices.Entry, 0, len(byKey))
	for _, entry := range byKey {
		merged = append(merged, entry)
	}
	sort.Slice(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if !a.ObservedAt.Equal(b.ObservedAt) {
			return a.ObservedAt.Before(b.ObservedAt)
		}
		return a.FuelGrade < b.FuelGrade
	})

	h.Entries = merged
	return h
}

// PersistHistory replaces the site's history file in full.
func (s *FileStore) PersistHistory(siteID string, h History) error {
	if err := s.writeJSON(s.historyPath(siteID), h); err != nil {
		return err
	}
	s.logger.Debug().Str("site", siteID).Int("entries", len(h.Entries)).Msg("history persisted")
	return nil
}

// PersistRaw writes the verbatim upstream payload for audit/replay.
func (s *FileStore) PersistRaw(siteID string, payload []byte) error {
	path := filepath.Join(s.dir, rawDirName, fileKey(siteID)+rawSuffix)
	return s.writeFile(path, payload)
}

// PersistSites overwrites the full site metadata snapshot.
func (s *FileStore) PersistSites(records map[string]sites.Record) error {
	return s.writeJSON(filepath.Join(s.dir, sitesFileName), records)
}

// LoadSites reads the site metadata snapshot; a missing file yields an
// empty mapping.
func (s *FileStore) LoadSites() (map[string]sites.Record, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, sitesFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]sites.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load sites snapshot: %w", err)
	}

	var records map[string]sites.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode sites snapshot: %w", err)
	}
	return records, nil
}

// ListSites returns the identifiers of all sites with a persisted
// history, in stable order.
func (s *FileStore) ListSites() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, historyDirName))
	if err != nil {
		return nil, fmt.Errorf("list history directory: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *FileStore) historyPath(siteID string) string {
	return filepath.Join(s.dir, historyDirName, fileKey(siteID)+".json")
}

func (s *FileStore) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return s.writeFile(path, data)
}

// writeFile replaces the target atomically: write a sibling temp file,
// then rename over the destination.
func (s *FileStore) writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", filepath.Base(path), err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// fileKey sanitizes a site identifier for use as a file name. Upstream
// identifiers are plain codes, but a hostile value must not escape the
// store directory.
func fileKey(siteID string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", "..", "_", string(os.PathSeparator), "_")
	key := replacer.Replace(siteID)
	if key == "" {
		key = "_"
	}
	return key
}

var _ HistoryStore = (*FileStore)(nil)
