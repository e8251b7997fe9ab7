package fetcher

import (
	"context"
	"encoding/json"
)

// SiteLister retrieves one upstream site-listing payload.
type SiteLister interface {
	FetchListing(ctx context.Context) (json.RawMessage, error)
}

// PriceLister retrieves the fuel-price payload for one site.
type PriceLister interface {
	FetchPrices(ctx context.Context, siteID string) (json.RawMessage, error)
}
