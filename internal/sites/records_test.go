package sites

import (
	"encoding/json"
	"testing"
)

func TestReconcileUnionAcrossShapes(t *testing.T) {
	fromSites, err := ParseListing(SourceSites, json.RawMessage(`{"sites":[{"site_code":"S1"},{"site_code":"S2"}]}`), noopLogger())
	if err != nil {
		t.Fatalf("parse sites: %v", err)
	}
	fromLocations, err := ParseListing(SourceLocations, json.RawMessage(`["S2","S3"]`), noopLogger())
	if err != nil {
		t.Fatalf("parse locations: %v", err)
	}

	merged := Reconcile(fromSites, fromLocations)
	if len(merged) != 3 {
		t.Fatalf("expected union of 3 site ids, got %d", len(merged))
	}
	for _, id := range []string{"S1", "S2", "S3"} {
		if _, ok := merged[id]; !ok {
			t.Fatalf("site %s missing from union", id)
		}
	}
}

func TestReconcileLastWriteWinsPerField(t *testing.T) {
	a := []Record{{SiteID: "X1", Name: "A"}}
	b := []Record{{SiteID: "X1", Address: "1 Main St"}}

	merged := Reconcile(a, b)
	rec := merged["X1"]
	if rec.Name != "A" {
		t.Fatalf("earlier name should be retained, got %q", rec.Name)
	}
	if rec.Address != "1 Main St" {
		t.Fatalf("later address should be merged in, got %q", rec.Address)
	}
}

func TestReconcileLaterFieldOverwrites(t *testing.T) {
	lat1, lat2 := -34.9, -35.1
	a := []Record{{SiteID: "X1", Name: "old", Latitude: &lat1}}
	b := []Record{{SiteID: "X1", Name: "new", Latitude: &lat2}}

	rec := Reconcile(a, b)["X1"]
	if rec.Name != "new" {
		t.Fatalf("later name should overwrite, got %q", rec.Name)
	}
	if rec.Latitude == nil || *rec.Latitude != lat2 {
		t.Fatalf("later latitude should overwrite, got %+v", rec.Latitude)
	}
}

func TestReconcilePlaceholderName(t *testing.T) {
	merged := Reconcile([]Record{{SiteID: "S9"}})
	if merged["S9"].Name != PlaceholderName("S9") {
		t.Fatalf("missing name should get placeholder, got %q", merged["S9"].Name)
	}
}

func TestCodesStableOrder(t *testing.T) {
	merged := Reconcile([]Record{{SiteID: "B"}, {SiteID: "A"}, {SiteID: "C"}})
	codes := Codes(merged)
	if len(codes) != 3 || codes[0] != "A" || codes[1] != "B" || codes[2] != "C" {
		t.Fatalf("codes not sorted: %v", codes)
	}
}
