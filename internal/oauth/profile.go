// profile.go -- User-info lookup and display name extraction.
package oauth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
)

// FetchProfile GETs p.ProfileEndpoint with the access token as a bearer credential
// and reads the display name at p.DisplayNamePath.
func (c *Client) FetchProfile(ctx context.Context, p ProviderConfig, accessToken string) (*Profile, error) {
	ctx = c.withHTTPClient(ctx)
	hc := p.oauth2Config("").Client(ctx, &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.ProfileEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: building request: %v", ErrProfileFetch, p.ID, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrProfileFetch, p.ID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: reading response: %v", ErrProfileFetch, p.ID, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: status %d: %s", ErrProfileFetch, p.ID, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: %s: response is not valid json", ErrProfileFetch, p.ID)
	}

	res := gjson.GetBytes(body, p.DisplayNamePath)
	name := strings.TrimSpace(res.String())
	if res.Type != gjson.String || name == "" {
		return nil, fmt.Errorf("%w: %s: no %q field in response", ErrProfileFetch, p.ID, p.DisplayNamePath)
	}
	return &Profile{DisplayName: name}, nil
}
