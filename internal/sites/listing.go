package sites

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Source names one upstream listing endpoint and fixes the priority
// order in which identifier field spellings are probed. The two
// integrations use different casing conventions for the same value, so
// each source carries its own spelling list.
type Source struct {
	Name        string
	IDFields    []string
	WrapperKeys []string
}

// SourceSites is the primary listing endpoint (snake_case payloads).
var SourceSites = Source{
	Name:        "sites",
	IDFields:    []string{"site_code", "site_id", "code", "id"},
	WrapperKeys: []string{"sites", "Sites", "data", "items"},
}

// SourceLocations is the secondary listing endpoint (camelCase payloads).
var SourceLocations = Source{
	Name:        "locations",
	IDFields:    []string{"siteCode", "siteId", "SiteCode", "SiteId", "code", "id"},
	WrapperKeys: []string{"locations", "Locations", "data", "items"},
}

// ParseListing normalizes one listing response into records. Three
// top-level shapes are recognized, tried in priority order: a mapping
// wrapping a list under a known key, a bare list of site objects, and a
// bare list of identifier strings. An unrecognized shape is an error;
// callers treat it as the source contributing zero records.
func ParseListing(src Source, raw json.RawMessage, logger zerolog.Logger) ([]Record, error) {
	log := logger.With().Str("source", src.Name).Logger()

	if inner, ok := unwrapListing(src, raw); ok {
		raw = inner
	}

	if records, ok := parseObjectList(src, raw, log); ok {
		return records, nil
	}
	if records, ok := parseStringList(raw); ok {
		return records, nil
	}

	return nil, fmt.Errorf("listing source %s: unrecognized top-level shape", src.Name)
}

// unwrapListing handles the mapping-with-nested-list shape, returning
// the inner list when one of the known wrapper keys is present.
func unwrapListing(src Source, raw json.RawMessage) (json.RawMessage, bool) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, false
	}
	for _, key := range src.WrapperKeys {
		if inner, ok := envelope[key]; ok {
			return inner, true
		}
	}
	return nil, false
}

func parseObjectList(src Source, raw json.RawMessage, log zerolog.Logger) ([]Record, bool) {
	var objects []map[string]any
	if err := json.Unmarshal(raw, &objects); err != nil {
		return nil, false
	}

	records := make([]Record, 0, len(objects))
	for _, obj := range objects {
		id, ok := extractID(src, obj)
		if !ok {
			log.Warn().Interface("record", obj).Msg("listing record has no recognized site identifier field, skipping")
			continue
		}
		records = append(records, Record{
			SiteID:    id,
			Name:      stringField(obj, "name", "Name", "site_name", "siteName", "title"),
			Latitude:  numberField(obj, "latitude", "lat", "Latitude", "Lat"),
			Longitude: numberField(obj, "longitude", "lng", "lon", "Longitude", "Lng"),
			Address:   stringField(obj, "address", "Address", "street", "address1"),
		})
	}
	return records, true
}

func parseStringList(raw json.RawMessage) ([]Record, bool) {
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, false
	}

	records := make([]Record, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		records = append(records, Record{SiteID: id})
	}
	return records, true
}

// extractID probes the source's identifier spellings in priority order.
// Upstream sends the value as either a string or a bare number.
func extractID(src Source, obj map[string]any) (string, bool) {
	for _, field := range src.IDFields {
		value, ok := obj[field]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case string:
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed, true
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), true
		}
	}
	return "", false
}

func stringField(obj map[string]any, fields ...string) string {
	for _, field := range fields {
		if v, ok := obj[field].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func numberField(obj map[string]any, fields ...string) *float64 {
	for _, field := range fields {
		switch v := obj[field].(type) {
		case float64:
			value := v
			return &value
		case string:
			if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return &parsed
			}
		}
	}
	return nil
}
