// authurl.go -- Authorization endpoint URL construction.
package oauth

import (
	"golang.org/x/oauth2"
)

// reservedAuthParams are set by BuildAuthURL itself and may not appear in ExtraAuthParams.
var reservedAuthParams = map[string]bool{
	"client_id":             true,
	"redirect_uri":          true,
	"response_type":         true,
	"scope":                 true,
	"state":                 true,
	"code_challenge":        true,
	"code_challenge_method": true,
	"code_verifier":         true,
	"response_mode":         true,
}

// BuildAuthURL returns the provider's consent page URL with client_id, redirect_uri,
// response_type=code, scope, state, the S256 code_challenge, response_mode when the provider
// sets one, and the provider's extra params.
// Only the challenge is sent; the verifier stays local until the token exchange.
func BuildAuthURL(p ProviderConfig, redirectBase string, pkce PKCE, state string) string {
	opts := make([]oauth2.AuthCodeOption, 0, len(p.ExtraAuthParams)+3)
	for k, v := range p.ExtraAuthParams {
		opts = append(opts, oauth2.SetAuthURLParam(k, v))
	}
	if p.ResponseMode != "" {
		opts = append(opts, oauth2.SetAuthURLParam("response_mode", p.ResponseMode))
	}
	opts = append(opts,
		oauth2.SetAuthURLParam("code_challenge", pkce.Challenge),
		oauth2.SetAuthURLParam("code_challenge_method", MethodS256),
	)
	return p.oauth2Config(redirectBase).AuthCodeURL(state, opts...)
}

// oauth2Config maps p onto x/oauth2. Credentials always travel in the form body:
// AuthStyleAutoDetect would retry a rejected exchange with the other style,
// and an authorization code is single-use.
func (p ProviderConfig) oauth2Config(redirectBase string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   p.AuthorizeEndpoint,
			TokenURL:  p.TokenEndpoint,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: p.RedirectURI(redirectBase),
		Scopes:      p.Scopes,
	}
}
