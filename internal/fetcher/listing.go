package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
)

// ListingOptions parameterise one site-listing endpoint. The secondary
// endpoint authenticates via an auth_token query parameter instead of
// the header, hence QueryAuth.
type ListingOptions struct {
	URL       string
	QueryAuth bool
}

// Listing fetches one site-listing endpoint.
type Listing struct {
	client *Client
	opts   ListingOptions
}

// NewListing constructs a listing fetcher backed by the shared client.
func NewListing(client *Client, opts ListingOptions) *Listing {
	return &Listing{client: client, opts: opts}
}

// FetchListing retrieves the raw listing payload. Shape normalization
// is the reconciler's job, not the transport's.
func (l *Listing) FetchListing(ctx context.Context) (json.RawMessage, error) {
	if l.opts.URL == "" {
		return nil, errors.New("listing url not configured")
	}

	endpoint := l.opts.URL
	if l.opts.QueryAuth {
		parsed, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse listing url: %w", err)
		}
		query := parsed.Query()
		query.Set("auth_token", l.client.opts.AuthToken)
		parsed.RawQuery = query.Encode()
		endpoint = parsed.String()
	}

	return l.client.getJSON(ctx, endpoint)
}

var _ SiteLister = (*Listing)(nil)
