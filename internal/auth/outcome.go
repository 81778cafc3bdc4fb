// outcome.go -- Login results and the failure taxonomy surfaced to the host.
package auth

import "errors"

// Kind classifies a failed login. The values are stable; hosts may switch on them.
type Kind string

const (
	KindUnknownProvider Kind = "UnknownProvider"
	KindInternal        Kind = "InternalError"
	KindListenerBind    Kind = "ListenerBindError"
	KindBrowserLaunch   Kind = "BrowserLaunchError"
	KindTimeout         Kind = "Timeout"
	KindProviderDenied  Kind = "ProviderDenied"
	KindStateMismatch   Kind = "StateMismatch"
	KindTokenExchange   Kind = "TokenExchangeError"
	KindProfileFetch    Kind = "ProfileFetchError"
)

var (
	ErrStateMismatch = errors.New("oauth state mismatch")
	ErrMissingCode   = errors.New("callback carried no authorization code")
)

// Outcome is what Login hands back to the host: a display name, or a Kind and Message.
// Message is safe to show verbatim; it never contains the verifier, client secret,
// authorization code or access token.
type Outcome struct {
	AttemptID   string
	Provider    string
	DisplayName string
	Kind        Kind
	Message     string
}

// Success reports whether the login produced a display name.
func (o Outcome) Success() bool { return o.Kind == "" }
