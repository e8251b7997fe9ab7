package fetcher

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/rs/zerolog"
)

// Options parameterise authenticated access to the fuel-price API.
// The user-agent and accept-encoding values are anti-blocking
// accommodations the upstream expects; they are opaque, not semantic.
type Options struct {
	AuthToken      string
	UserAgent      string
	AcceptEncoding string
	Timeout        time.Duration
}

// Client issues authenticated JSON GETs against the upstream API.
type Client struct {
	opts   Options
	client *http.Client
	logger zerolog.Logger
}

// NewClient constructs a shared HTTP client.
func NewClient(opts Options, logger zerolog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		opts:   opts,
		client: &http.Client{Timeout: timeout},
		logger: logger.With().Str("component", "api_client").Logger(),
	}
}

func (c *Client) getJSON(ctx context.Context, url string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("AuthToken", c.opts.AuthToken)
	req.Header.Set("Accept", "application/json")
	if enc := strings.TrimSpace(c.opts.AcceptEncoding); enc != "" {
		req.Header.Set("Accept-Encoding", enc)
	}
	if ua := strings.TrimSpace(c.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	c.logger.Debug().Str("url", url).Msg("GET")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := decodeBody(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpError(resp.StatusCode, payload)
	}

	return json.RawMessage(payload), nil
}

// decodeBody decompresses the response when the server honoured our
// Accept-Encoding hint. Setting the header manually disables net/http's
// transparent decompression, so both codings are handled here.
func decodeBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("open gzip body: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	payload, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return payload, nil
}

func httpError(status int, payload []byte) error {
	trimmed := strings.TrimSpace(string(payload))
	if len(trimmed) > 200 {
		trimmed = trimmed[:200]
	}
	if trimmed != "" {
		return fmt.Errorf("fuel api error (%d): %s", status, trimmed)
	}
	return fmt.Errorf("fuel api error (%d)", status)
}
