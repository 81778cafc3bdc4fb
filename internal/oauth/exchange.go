// exchange.go -- Authorization code -> access token.
package oauth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// ExchangeCode POSTs grant_type=authorization_code with the code, the PKCE verifier, client_id,
// client_secret (confidential clients only) and the same redirect_uri used by BuildAuthURL.
// Never retried: providers reject a second use of the same code.
// Error messages carry the provider's raw response body, never the request parameters.
func (c *Client) ExchangeCode(ctx context.Context, p ProviderConfig, redirectBase, code, verifier string) (*Token, error) {
	rec := &bodyRecorder{base: c.transport()}
	hc := *c.http
	hc.Transport = rec
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &hc)

	tok, err := p.oauth2Config(redirectBase).Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		var rErr *oauth2.RetrieveError
		if errors.As(err, &rErr) {
			return nil, fmt.Errorf("%w: %s: %s", ErrTokenExchange, p.ID, strings.TrimSpace(string(rErr.Body)))
		}
		if body := rec.lastBody(); body != "" {
			return nil, fmt.Errorf("%w: %s: %v: %s", ErrTokenExchange, p.ID, err, body)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrTokenExchange, p.ID, err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("%w: %s: no access_token in response: %s", ErrTokenExchange, p.ID, rec.lastBody())
	}
	return &Token{AccessToken: tok.AccessToken, TokenType: tok.Type()}, nil
}

// bodyRecorder keeps a copy of the token response body. x/oauth2 drops it when a
// successful status carries no access_token.
type bodyRecorder struct {
	base http.RoundTripper
	body []byte
}

func (r *bodyRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := r.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("reading token response: %w", err)
	}
	r.body = body
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

func (r *bodyRecorder) lastBody() string {
	return strings.TrimSpace(string(r.body))
}
