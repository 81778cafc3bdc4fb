// client.go -- HTTP client shared by the token exchange and profile fetch.
package oauth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

var (
	ErrTokenExchange = errors.New("token exchange failed")
	ErrProfileFetch  = errors.New("profile fetch failed")
)

// maxBodyBytes caps provider responses read into memory.
const maxBodyBytes = 1 << 20

// Client talks to provider token and profile endpoints.
type Client struct {
	http *http.Client
}

// NewClient returns a Client whose requests give up after timeout.
// A nil hc uses a fresh http.Client.
func NewClient(hc *http.Client, timeout time.Duration) *Client {
	if hc == nil {
		hc = &http.Client{}
	}
	if timeout > 0 {
		c := *hc
		c.Timeout = timeout
		hc = &c
	}
	return &Client{http: hc}
}

// transport is the round tripper under c.http.
func (c *Client) transport() http.RoundTripper {
	if c.http.Transport != nil {
		return c.http.Transport
	}
	return http.DefaultTransport
}

// withHTTPClient makes x/oauth2 use c.http as its base transport.
func (c *Client) withHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.http)
}
