// google.go -- Google OAuth2 provider definition.
package oauth

// Google endpoints. The People API returns names as a list; the first entry is the primary name.
const (
	GoogleAuthorizeURL = "https://accounts.google.com/o/oauth2/v2/auth"
	GoogleTokenURL     = "https://oauth2.googleapis.com/token"
	GoogleProfileURL   = "https://people.googleapis.com/v1/people/me?personFields=names"
)

// Google returns the config for Google sign-in.
// Google treats installed apps as confidential clients, so clientSecret is required.
// access_type=offline + prompt=consent make Google issue a refresh token on every consent.
func Google(clientID, clientSecret string) ProviderConfig {
	return ProviderConfig{
		ID:                "google",
		ClientID:          clientID,
		ClientSecret:      clientSecret,
		AuthorizeEndpoint: GoogleAuthorizeURL,
		TokenEndpoint:     GoogleTokenURL,
		ProfileEndpoint:   GoogleProfileURL,
		Scopes:            []string{"openid", "profile", "email"},
		RedirectPath:      "/google-callback",
		ExtraAuthParams: map[string]string{
			"access_type": "offline",
			"prompt":      "consent",
		},
		DisplayNamePath: "names.0.displayName",
	}
}
