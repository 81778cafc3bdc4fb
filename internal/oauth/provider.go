// provider.go -- OAuth provider description and shared types.
package oauth

import (
	"errors"
	"fmt"
	"strings"
)

// ResponseModeQuery is the only response mode the loopback listener can read.
// Fragment responses never reach the server; form_post needs a POST handler.
const ResponseModeQuery = "query"

var (
	ErrProviderNotFound  = errors.New("provider not found")
	ErrDuplicateProvider = errors.New("duplicate provider registration")
	ErrInvalidProvider   = errors.New("invalid provider config")
)

// ProviderConfig describes one Authorization Code + PKCE provider.
// Adding a provider is a data change: fill one of these in and register it.
// ClientSecret is empty for public clients; it is then omitted from the token request.
type ProviderConfig struct {
	ID                string
	ClientID          string
	ClientSecret      string
	AuthorizeEndpoint string
	TokenEndpoint     string
	ProfileEndpoint   string
	Scopes            []string

	// RedirectPath is the path on the loopback listener, e.g. "/google-callback".
	RedirectPath string

	// ResponseMode must be "query" or empty (provider default, which is query for code flow).
	// When set it is sent as response_mode; ExtraAuthParams may not override it.
	ResponseMode string

	// ExtraAuthParams are appended to the authorization URL as-is (access_type, prompt, ...).
	ExtraAuthParams map[string]string

	// DisplayNamePath is a gjson path into the profile response,
	// e.g. "names.0.displayName" for Google People or "displayName" for Graph.
	DisplayNamePath string
}

// RedirectURI joins the loopback base (e.g. "http://localhost:12345") and RedirectPath.
// Used for both the authorization request and the token exchange so they always match.
func (p ProviderConfig) RedirectURI(base string) string {
	return strings.TrimRight(base, "/") + p.RedirectPath
}

// Validate checks the fields every step of the flow depends on.
func (p ProviderConfig) Validate() error {
	switch {
	case p.ID == "":
		return fmt.Errorf("%w: id is required", ErrInvalidProvider)
	case p.ClientID == "":
		return fmt.Errorf("%w: %s: client id is required", ErrInvalidProvider, p.ID)
	case p.AuthorizeEndpoint == "", p.TokenEndpoint == "", p.ProfileEndpoint == "":
		return fmt.Errorf("%w: %s: authorize, token and profile endpoints are required", ErrInvalidProvider, p.ID)
	case !strings.HasPrefix(p.RedirectPath, "/"):
		return fmt.Errorf("%w: %s: redirect path must start with /", ErrInvalidProvider, p.ID)
	case p.ResponseMode != "" && p.ResponseMode != ResponseModeQuery:
		return fmt.Errorf("%w: %s: response mode %q is not supported", ErrInvalidProvider, p.ID, p.ResponseMode)
	case p.DisplayNamePath == "":
		return fmt.Errorf("%w: %s: display name path is required", ErrInvalidProvider, p.ID)
	}
	for k := range p.ExtraAuthParams {
		if reservedAuthParams[k] {
			return fmt.Errorf("%w: %s: extra auth param %q is set by the flow", ErrInvalidProvider, p.ID, k)
		}
	}
	return nil
}

// PKCE holds one attempt's code verifier and its S256 challenge.
type PKCE struct {
	Verifier  string
	Challenge string
	Method    string
}

// Token is the part of a token endpoint response this package uses.
type Token struct {
	AccessToken string
	TokenType   string
}

// Profile is the normalized user profile. Only the display name is extracted.
type Profile struct {
	DisplayName string
}
