package prices

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Entry is one normalized price observation. Within a site's history
// the (ObservedAt, FuelGrade) pair is unique.
type Entry struct {
	FuelGrade  string          `json:"fuel_grade"`
	Price      decimal.Decimal `json:"price"`
	ObservedAt time.Time       `json:"observed_at"`
}

// Key returns the composite merge key. The instant is keyed in UTC so
// the same observation reported with different wall-clock offsets
// cannot duplicate.
func (e Entry) Key() string {
	return fmt.Sprintf("%d|%s", e.ObservedAt.UTC().UnixNano(), e.FuelGrade)
}

var (
	payloadKeys = []string{"prices", "Prices", "fuel_prices", "fuelPrices", "data", "items"}
	gradeFields = []string{"department_code", "departmentCode", "DepartmentCode", "department", "fuel_grade", "grade"}
	priceFields = []string{"price", "current_price", "currentPrice", "CurrentPrice", "Price"}
	dateFields  = []string{"date", "price_date", "priceDate", "last_updated", "lastUpdated", "updated_at"}
)

// ParsePayload normalizes one site's upstream price payload. The
// payload is either a mapping wrapping the record list under a known
// key or a bare list. Records missing a fuel-grade code, a price value,
// or a parseable date are silently dropped; they stay visible in the
// verbatim raw payload on disk.
func ParsePayload(raw json.RawMessage) ([]Entry, error) {
	records, err := recordList(raw)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		entry, ok := normalize(rec)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func recordList(raw json.RawMessage) ([]map[string]any, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err == nil {
		for _, key := range payloadKeys {
			if inner, ok := envelope[key]; ok {
				raw = inner
				break
			}
		}
	}

	var records []map[string]any
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("price payload: unrecognized shape: %w", err)
	}
	return records, nil
}

// normalize admits a record only when all three components of a usable
// observation are present.
func normalize(rec map[string]any) (Entry, bool) {
	grade := stringField(rec, gradeFields...)
	if grade == "" {
		return Entry{}, false
	}

	price, ok := priceValue(rec)
	if !ok {
		return Entry{}, false
	}

	observed, ok := dateValue(rec)
	if !ok {
		return Entry{}, false
	}

	return Entry{FuelGrade: grade, Price: price, ObservedAt: observed}, true
}

func priceValue(rec map[string]any) (decimal.Decimal, bool) {
	for _, field := range priceFields {
		switch v := rec[field].(type) {
		case float64:
			return decimal.NewFromFloat(v), true
		case string:
			if parsed, err := decimal.NewFromString(strings.TrimSpace(v)); err == nil {
				return parsed, true
			}
		}
	}
	return decimal.Decimal{}, false
}

func dateValue(rec map[string]any) (time.Time, bool) {
	for _, field := range dateFields {
		token, ok := rec[field].(string)
		if !ok {
			continue
		}
		if t, ok := ParseUpstreamDate(token); ok {
			return t, true
		}
		// Some revisions of the upstream already send RFC3339.
		if t, err := time.Parse(time.RFC3339, token); err == nil {
			return t, true
		}
		return time.Time{}, false
	}
	return time.Time{}, false
}

func stringField(rec map[string]any, fields ...string) string {
	for _, field := range fields {
		switch v := rec[field].(type) {
		case string:
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}
