package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Prices fetches per-site fuel-price payloads.
type Prices struct {
	client      *Client
	urlTemplate string
}

// NewPrices constructs a price fetcher. urlTemplate carries a single
// %s slot for the site identifier.
func NewPrices(client *Client, urlTemplate string) *Prices {
	return &Prices{client: client, urlTemplate: urlTemplate}
}

// FetchPrices retrieves the raw price payload for one site.
func (p *Prices) FetchPrices(ctx context.Context, siteID string) (json.RawMessage, error) {
	if !strings.Contains(p.urlTemplate, "%s") {
		return nil, errors.New("price url template missing %s site placeholder")
	}
	if siteID == "" {
		return nil, errors.New("site id required")
	}

	endpoint := fmt.Sprintf(p.urlTemplate, url.PathEscape(siteID))
	return p.client.getJSON(ctx, endpoint)
}

var _ PriceLister = (*Prices)(nil)
