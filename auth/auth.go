// Package auth obtains OAuth2 client-credentials tokens for outbound requests.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ClientCred caches a token and refreshes it when it expires.
type ClientCred struct {
	conf clientcredentials.Config
	src  oauth2.TokenSource
}

func NewClientCred(conf Conf) *ClientCred {
	cc := conf.toOauth2Config()
	return &ClientCred{
		conf: cc,
		src:  oauth2.ReuseTokenSource(nil, cc.TokenSource(context.Background())),
	}
}

// GetToken returns a valid access token, requesting a new one when needed.
func (c *ClientCred) GetToken() (string, error) {
	tok, err := c.src.Token()
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}
	return tok.AccessToken, nil
}

// SetAuthHeader sets the Authorization header of r.
func (c *ClientCred) SetAuthHeader(r *http.Request) error {
	tok, err := c.src.Token()
	if err != nil {
		return fmt.Errorf("failed to get token: %w", err)
	}
	tok.SetAuthHeader(r)
	return nil
}

// HTTPClient returns a client authorizing every request. Token requests
// and upstream requests share the timeout.
func (c *ClientCred) HTTPClient(timeout time.Duration) *http.Client {
	base := &http.Client{Timeout: timeout}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	hc := c.conf.Client(ctx)
	hc.Timeout = timeout
	return hc
}
