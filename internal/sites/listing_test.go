package sites

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestParseListingWrappedList(t *testing.T) {
	raw := json.RawMessage(`{"sites":[{"site_code":"S1","name":"Alpha","latitude":-34.9,"longitude":138.6},{"site_code":"S2"}]}`)

	records, err := ParseListing(SourceSites, raw, noopLogger())
	if err != nil {
		t.Fatalf("wrapped list should parse: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].SiteID != "S1" || records[0].Name != "Alpha" {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if records[0].Latitude == nil || *records[0].Latitude != -34.9 {
		t.Fatalf("latitude not extracted: %+v", records[0])
	}
	if records[1].Name != "" {
		t.Fatalf("absent name should stay empty until reconcile: %+v", records[1])
	}
}

func TestParseListingBareObjectList(t *testing.T) {
	raw := json.RawMessage(`[{"siteCode":"L1","name":"Beta","address":"1 Main St"}]`)

	records, err := ParseListing(SourceLocations, raw, noopLogger())
	if err != nil {
		t.Fatalf("bare object list should parse: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].SiteID != "L1" || records[0].Address != "1 Main St" {
		t.Fatalf("unexpected record: %+v", records[0])
	}
}

func TestParseListingStringList(t *testing.T) {
	raw := json.RawMessage(`["S1","S2"," ","S3"]`)

	records, err := ParseListing(SourceSites, raw, noopLogger())
	if err != nil {
		t.Fatalf("string list should parse: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("blank identifiers should be dropped, got %d records", len(records))
	}
	if records[0].SiteID != "S1" || records[2].SiteID != "S3" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestParseListingNumericIdentifiers(t *testing.T) {
	raw := json.RawMessage(`{"sites":[{"site_code":101},{"id":202.0}]}`)

	records, err := ParseListing(SourceSites, raw, noopLogger())
	if err != nil {
		t.Fatalf("numeric identifiers should parse: %v", err)
	}
	if len(records) != 2 || records[0].SiteID != "101" || records[1].SiteID != "202" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestParseListingSkipsRecordsWithoutIdentifier(t *testing.T) {
	raw := json.RawMessage(`{"sites":[{"name":"no id"},{"site_code":"S1"}]}`)

	records, err := ParseListing(SourceSites, raw, noopLogger())
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(records) != 1 || records[0].SiteID != "S1" {
		t.Fatalf("record without identifier should be skipped: %+v", records)
	}
}

func TestParseListingUnrecognizedShape(t *testing.T) {
	for _, raw := range []string{`"just a string"`, `42`, `{"unexpected":"shape"}`} {
		if _, err := ParseListing(SourceSites, json.RawMessage(raw), noopLogger()); err == nil {
			t.Fatalf("shape %s should not be recognized", raw)
		}
	}
}

func TestParseListingIdentifierPriority(t *testing.T) {
	// site_code outranks id for the sites source.
	raw := json.RawMessage(`[{"site_code":"PRIMARY","id":"FALLBACK"}]`)

	records, err := ParseListing(SourceSites, raw, noopLogger())
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if records[0].SiteID != "PRIMARY" {
		t.Fatalf("expected site_code to win, got %q", records[0].SiteID)
	}
}
