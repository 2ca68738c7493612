// Package static serves prices from a local JSON file using the elprisen
// response format. It is meant for development and offline runs.
package static

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/kilianp07/nexthour/connectors"
	"github.com/kilianp07/nexthour/connectors/clients/elprisen"
	"github.com/kilianp07/nexthour/core/model"
	"github.com/kilianp07/nexthour/core/pricecache"
)

// ID identifies the connector in configuration.
const ID = "static"

// Client reads the whole file once and answers per-day lookups from memory.
// The partition is ignored.
type Client struct {
	path string
	loc  *time.Location

	once   sync.Once
	series model.Series
	err    error
}

// NewClient creates a Client. WithPath is required.
func NewClient(opts ...connectors.Option) (*Client, error) {
	c := &Client{loc: time.UTC}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.path == "" {
		return nil, fmt.Errorf("static: path is required")
	}
	return c, nil
}

// WithPath sets the file to read prices from.
func WithPath(p string) connectors.Option {
	return func(c connectors.PriceClient) error {
		if s, ok := c.(*Client); ok {
			s.path = p
			return nil
		}
		return fmt.Errorf(connectors.ErrIncompatibleOption, "WithPath", ID)
	}
}

// WithLocation sets the location used to assign points to days.
func WithLocation(loc *time.Location) connectors.Option {
	return func(c connectors.PriceClient) error {
		if s, ok := c.(*Client); ok {
			s.loc = loc
			return nil
		}
		return fmt.Errorf(connectors.ErrIncompatibleOption, "WithLocation", ID)
	}
}

func (c *Client) load() {
	b, err := os.ReadFile(c.path)
	if err != nil {
		c.err = err
		return
	}
	var r elprisen.Response
	if err := json.Unmarshal(b, &r); err != nil {
		c.err = err
		return
	}
	c.series, c.err = r.Series()
}

// Fetch returns the points of the file starting on date.
func (c *Client) Fetch(ctx context.Context, date time.Time, _ string) (model.Series, error) {
	if err := ctx.Err(); err != nil {
		return model.Series{}, err
	}
	c.once.Do(c.load)
	if c.err != nil {
		return model.Series{}, fmt.Errorf("%w: %v", pricecache.ErrSourceUnavailable, c.err)
	}
	y, m, d := date.In(c.loc).Date()
	out := model.Series{}
	for _, p := range c.series {
		py, pm, pd := p.ValidFrom.In(c.loc).Date()
		if py == y && pm == m && pd == d {
			out = append(out, p)
		}
	}
	return out, nil
}
