package sites

import (
	"fmt"
	"sort"
)

// Record is the normalized form of one fuel retail location. Optional
// fields stay nil/empty when the upstream source did not supply them so
// that merging can tell "absent" apart from "zero".
type Record struct {
	SiteID    string   `json:"site_id"`
	Name      string   `json:"name,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Address   string   `json:"address,omitempty"`
}

// PlaceholderName synthesizes a display name for sites whose listings
// never supplied one.
func PlaceholderName(siteID string) string {
	return fmt.Sprintf("site %s", siteID)
}

// Reconcile folds listing batches into a single mapping keyed by site
// identifier. Batches are processed in argument order; when two batches
// carry the same site, fields supplied by the later batch overwrite the
// earlier ones field by field, and fields the later batch omitted are
// retained. Sites still missing a name afterwards get a placeholder.
func Reconcile(batches ...[]Record) map[string]Record {
	merged := make(map[string]Record)
	for _, batch := range batches {
		for _, rec := range batch {
			if rec.SiteID == "" {
				continue
			}
			existing, ok := merged[rec.SiteID]
			if !ok {
				merged[rec.SiteID] = rec
				continue
			}
			merged[rec.SiteID] = mergeFields(existing, rec)
		}
	}

	for id, rec := range merged {
		if rec.Name == "" {
			rec.Name = PlaceholderName(id)
			merged[id] = rec
		}
	}
	return merged
}

func mergeFields(dst, src Record) Record {
	if src.Name != "" {
		dst.Name = src.Name
	}
	if src.Latitude != nil {
		dst.Latitude = src.Latitude
	}
	if src.Longitude != nil {
		dst.Longitude = src.Longitude
	}
	if src.Address != "" {
		dst.Address = src.Address
	}
	return dst
}

// Codes lists the identifiers of a reconciled mapping in stable order.
func Codes(records map[string]Record) []string {
	codes := make([]string, 0, len(records))
	for id := range records {
		codes = append(codes, id)
	}
	sort.Strings(codes)
	return codes
}
