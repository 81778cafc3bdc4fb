// microsoft.go -- Microsoft identity platform (v2.0, common tenant) provider definition.
package oauth

const (
	MicrosoftAuthorizeURL = "https://login.microsoftonline.com/common/oauth2/v2.0/authorize"
	MicrosoftTokenURL     = "https://login.microsoftonline.com/common/oauth2/v2.0/token"
	MicrosoftProfileURL   = "https://graph.microsoft.com/v1.0/me"
)

// Microsoft returns the config for Microsoft sign-in.
// Registered as a public client: PKCE only, no client secret.
func Microsoft(clientID string) ProviderConfig {
	return ProviderConfig{
		ID:                "microsoft",
		ClientID:          clientID,
		AuthorizeEndpoint: MicrosoftAuthorizeURL,
		TokenEndpoint:     MicrosoftTokenURL,
		ProfileEndpoint:   MicrosoftProfileURL,
		Scopes:            []string{"User.Read", "offline_access"},
		RedirectPath:      "/microsoft-callback",
		ResponseMode:      ResponseModeQuery,
		DisplayNamePath:   "displayName",
	}
}
