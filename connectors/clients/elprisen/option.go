package elprisen

import (
	"fmt"
	"net/http"
	"time"

	"github.com/kilianp07/nexthour/connectors"
	"github.com/kilianp07/nexthour/core/logger"
)

// WithBaseURL overrides the upstream base URL.
func WithBaseURL(u string) connectors.Option {
	return func(c connectors.PriceClient) error {
		if e, ok := c.(*Client); ok {
			e.baseURL = u
			return nil
		}
		return fmt.Errorf(connectors.ErrIncompatibleOption, "WithBaseURL", ID)
	}
}

// WithTimeout sets the timeout of outbound requests.
func WithTimeout(d time.Duration) connectors.Option {
	return func(c connectors.PriceClient) error {
		if e, ok := c.(*Client); ok {
			e.client = &http.Client{Timeout: d}
			return nil
		}
		return fmt.Errorf(connectors.ErrIncompatibleOption, "WithTimeout", ID)
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) connectors.Option {
	return func(c connectors.PriceClient) error {
		if e, ok := c.(*Client); ok {
			e.client = hc
			return nil
		}
		return fmt.Errorf(connectors.ErrIncompatibleOption, "WithHTTPClient", ID)
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) connectors.Option {
	return func(c connectors.PriceClient) error {
		if e, ok := c.(*Client); ok {
			e.log = l
			return nil
		}
		return fmt.Errorf(connectors.ErrIncompatibleOption, "WithLogger", ID)
	}
}
