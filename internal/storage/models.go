package storage

import (
	"github.com/nutterthanos/OTR-FuelPrices/internal/prices"
	"github.com/nutterthanos/OTR-FuelPrices/internal/sites"
)

// History is one site's persisted price history. Site metadata is
// denormalized into the file so the chart renderer can label output
// without consulting the sites snapshot.
type History struct {
	SiteID    string         `json:"site_id"`
	SiteName  string         `json:"site_name,omitempty"`
	Latitude  *float64       `json:"latitude,omitempty"`
	Longitude *float64       `json:"longitude,omitempty"`
	Entries   []prices.Entry `json:"prices"`
}

// ApplySite refreshes the denormalized metadata from a reconciled record.
func (h *History) ApplySite(rec sites.Record) {
	h.SiteID = rec.SiteID
	if rec.Name != "" {
		h.SiteName = rec.Name
	}
	if rec.Latitude != nil {
		h.Latitude = rec.Latitude
	}
	if rec.Longitude != nil {
		h.Longitude = rec.Longitude
	}
}

// HistoryStore is the persistence surface the collector depends on.
type HistoryStore interface {
	LoadHistory(siteID string) (History, error)
	PersistHistory(siteID string, h History) error
	PersistRaw(siteID string, payload []byte) error
	PersistSites(records map[string]sites.Record) error
}
