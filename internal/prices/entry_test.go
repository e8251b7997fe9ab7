package prices

import (
	"encoding/json"
	"testing"
)

func TestParsePayloadWrapped(t *testing.T) {
	raw := json.RawMessage(`{"prices":[
		{"department_code":"diesel","price":1.75,"date":"/Date(1733180280000+1030)/"},
		{"department_code":"unleaded","price":"1.689","date":"/Date(1733180280000+1030)/"}
	]}`)

	entries, err := ParsePayload(raw)
	if err != nil {
		t.Fatalf("wrapped payload should parse: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].FuelGrade != "diesel" {
		t.Fatalf("unexpected grade: %q", entries[0].FuelGrade)
	}
	if entries[1].Price.String() != "1.689" {
		t.Fatalf("string price should parse exactly, got %s", entries[1].Price)
	}
}

func TestParsePayloadBareList(t *testing.T) {
	raw := json.RawMessage(`[{"departmentCode":"diesel","currentPrice":1.75,"lastUpdated":"/Date(1733180280000+1030)/"}]`)

	entries, err := ParsePayload(raw)
	if err != nil {
		t.Fatalf("bare list should parse: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
}

func TestParsePayloadDropsInvalidRecords(t *testing.T) {
	raw := json.RawMessage(`{"prices":[
		{"department_code":"diesel","price":1.75,"date":"/Date(1733180280000+1030)/"},
		{"price":1.75,"date":"/Date(1733180280000+1030)/"},
		{"department_code":"diesel","date":"/Date(1733180280000+1030)/"},
		{"department_code":"diesel","price":1.75,"date":"/Date(broken"},
		{"department_code":"diesel","price":1.75}
	]}`)

	entries, err := ParsePayload(raw)
	if err != nil {
		t.Fatalf("payload should parse: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("invalid records should be dropped silently, got %d entries", len(entries))
	}
}

func TestParsePayloadRFC3339Fallback(t *testing.T) {
	raw := json.RawMessage(`[{"department_code":"diesel","price":1.5,"date":"2024-12-03T09:08:00+10:30"}]`)

	entries, err := ParsePayload(raw)
	if err != nil {
		t.Fatalf("payload should parse: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("RFC3339 dates should be accepted, got %d entries", len(entries))
	}
}

func TestParsePayloadUnrecognizedShape(t *testing.T) {
	if _, err := ParsePayload(json.RawMessage(`"nope"`)); err == nil {
		t.Fatal("non-list payload should error")
	}
}

func TestEntryKeyNormalizesZone(t *testing.T) {
	a, ok := ParseUpstreamDate("/Date(1733180280000+1030)/")
	if !ok {
		t.Fatal("parse failed")
	}
	b, ok := ParseUpstreamDate("/Date(1733180280000)/")
	if !ok {
		t.Fatal("parse failed")
	}

	ea := Entry{FuelGrade: "diesel", ObservedAt: a}
	eb := Entry{FuelGrade: "diesel", ObservedAt: b}
	if ea.Key() != eb.Key() {
		t.Fatalf("same instant in different zones must share a key: %s vs %s", ea.Key(), eb.Key())
	}

	ec := Entry{FuelGrade: "unleaded", ObservedAt: a}
	if ea.Key() == ec.Key() {
		t.Fatal("different grades must not share a key")
	}
}
