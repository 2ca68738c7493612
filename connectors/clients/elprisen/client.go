// Package elprisen fetches Danish consumer electricity prices per grid
// company (GLN number) from elprisen.somjson.dk.
package elprisen

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kilianp07/nexthour/connectors"
	"github.com/kilianp07/nexthour/core/logger"
	"github.com/kilianp07/nexthour/core/model"
	"github.com/kilianp07/nexthour/core/pricecache"
)

const (
	// ID identifies the connector in configuration.
	ID = "elprisen"
	// DefaultBaseURL is the public endpoint.
	DefaultBaseURL = "https://elprisen.somjson.dk"
	// Credits must accompany any answer derived from this source.
	Credits = "Prices provided by https://elprisen.somjson.dk"
)

// Client retrieves one day of hourly prices per request.
type Client struct {
	baseURL string
	client  *http.Client
	log     logger.Logger
}

// NewClient creates a Client with the given options applied.
func NewClient(opts ...connectors.Option) (*Client, error) {
	c := &Client{
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     logger.Nop{},
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Fetch retrieves the prices of date for the GLN number partition.
//
// Any failure (transport, non-200 status, undecodable body) returns an empty
// series together with an error wrapping pricecache.ErrSourceUnavailable.
// No retry is attempted.
func (c *Client) Fetch(ctx context.Context, date time.Time, partition string) (model.Series, error) {
	q := url.Values{}
	q.Set("GLN_Number", partition)
	q.Set("start", date.Format(time.DateOnly))
	endpoint := c.baseURL + "/elpris?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.Series{}, fmt.Errorf("%w: failed to create request: %v", pricecache.ErrSourceUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return model.Series{}, fmt.Errorf("%w: failed to send request: %w", pricecache.ErrSourceUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return model.Series{}, fmt.Errorf("%w: unexpected status code: %d, body: %s", pricecache.ErrSourceUnavailable, resp.StatusCode, body)
	}

	var r Response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return model.Series{}, fmt.Errorf("%w: failed to decode response: %v", pricecache.ErrSourceUnavailable, err)
	}
	series, err := r.Series()
	if err != nil {
		return model.Series{}, fmt.Errorf("%w: %v", pricecache.ErrSourceUnavailable, err)
	}
	c.log.Debugf("elprisen: %d prices for %s on %s", len(series), partition, date.Format(time.DateOnly))
	return series, nil
}
