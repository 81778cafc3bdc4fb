// flow.go -- Browser-delegated Authorization Code + PKCE login.
//
// One Login call is one attempt: fresh PKCE + state, listener bound before the browser
// opens, one callback, one token exchange, one profile fetch. Nothing is retried; the
// host starts a new attempt instead.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/MGallo-Code/charon-loopback/internal/browser"
	"github.com/MGallo-Code/charon-loopback/internal/callback"
	"github.com/MGallo-Code/charon-loopback/internal/oauth"
	"github.com/gofrs/uuid/v5"
)

// DefaultCallbackTimeout is how long the listener waits for the provider redirect.
const DefaultCallbackTimeout = 60 * time.Second

// State is a step of the login state machine.
type State int

const (
	StateIdle State = iota
	StatePkceGenerated
	StateURLBuilt
	StateAwaitingCallback
	StateValidated
	StateTokenExchanged
	StateProfileFetched
	StateFailed
)

var stateNames = [...]string{
	StateIdle:             "idle",
	StatePkceGenerated:    "pkce_generated",
	StateURLBuilt:         "url_built",
	StateAwaitingCallback: "awaiting_callback",
	StateValidated:        "state_validated",
	StateTokenExchanged:   "token_exchanged",
	StateProfileFetched:   "profile_fetched",
	StateFailed:           "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Flow runs logins against the registered providers.
// The host serializes calls: two concurrent Logins contend for ListenAddr and the
// second fails with KindListenerBind.
type Flow struct {
	Providers *oauth.Registry
	Client    *oauth.Client
	Opener    browser.Opener

	// ListenAddr is where the callback listener binds, e.g. "localhost:12345".
	ListenAddr string
	// RedirectBase prefixes every provider's RedirectPath, e.g. "http://localhost:12345".
	RedirectBase string
	// Timeout bounds the wait for the redirect. Zero means DefaultCallbackTimeout.
	Timeout time.Duration
}

// attempt is the per-Login bookkeeping. Discarded when Login returns.
type attempt struct {
	id       uuid.UUID
	provider string
	state    State
	started  time.Time
}

// Login runs one attempt for providerID and maps every failure to a Kind.
// ctx cancellation ends the callback wait early and aborts in-flight provider requests.
func (f *Flow) Login(ctx context.Context, providerID string) Outcome {
	id, err := uuid.NewV7()
	if err != nil {
		return Outcome{Provider: providerID, Kind: KindInternal, Message: "could not start login attempt"}
	}
	a := &attempt{id: id, provider: providerID, state: StateIdle, started: time.Now()}
	logInfo(a, "login started")

	p, err := f.Providers.Get(providerID)
	if err != nil {
		return a.fail(KindUnknownProvider, err)
	}

	pkce := oauth.GeneratePKCE()
	state, err := oauth.GenerateState()
	if err != nil {
		return a.fail(KindInternal, err)
	}
	a.to(StatePkceGenerated)

	authURL := oauth.BuildAuthURL(p, f.RedirectBase, pkce, state)
	a.to(StateURLBuilt)

	// Bind before the browser opens: a busy port must fail before the user sees a consent page.
	l, err := callback.Listen(f.ListenAddr, p.RedirectPath, f.timeout())
	if err != nil {
		return a.fail(KindListenerBind, err)
	}
	defer l.Close()
	a.to(StateAwaitingCallback)

	if err := f.Opener.Open(authURL); err != nil {
		return a.fail(KindBrowserLaunch, fmt.Errorf("could not open browser: %w", err))
	}

	res, err := l.Wait(ctx)
	if err != nil {
		switch {
		case errors.Is(err, callback.ErrProviderDenied):
			return a.fail(KindProviderDenied, err)
		case errors.Is(err, callback.ErrTimeout), errors.Is(err, callback.ErrCancelled):
			return a.fail(KindTimeout, err)
		default:
			return a.fail(KindInternal, err)
		}
	}

	// Constant-time comparison prevents timing oracle on state value.
	if subtle.ConstantTimeCompare([]byte(res.State), []byte(state)) != 1 {
		return a.fail(KindStateMismatch, fmt.Errorf("%s: %w", p.ID, ErrStateMismatch))
	}
	a.to(StateValidated)

	if res.Code == "" {
		return a.fail(KindTokenExchange, fmt.Errorf("%s: %w", p.ID, ErrMissingCode))
	}
	tok, err := f.Client.ExchangeCode(ctx, p, f.RedirectBase, res.Code, pkce.Verifier)
	if err != nil {
		return a.fail(KindTokenExchange, err)
	}
	a.to(StateTokenExchanged)

	prof, err := f.Client.FetchProfile(ctx, p, tok.AccessToken)
	if err != nil {
		return a.fail(KindProfileFetch, err)
	}
	a.to(StateProfileFetched)

	logInfo(a, "login succeeded", "duration", time.Since(a.started))
	return Outcome{AttemptID: a.id.String(), Provider: a.provider, DisplayName: prof.DisplayName}
}

func (f *Flow) timeout() time.Duration {
	if f.Timeout <= 0 {
		return DefaultCallbackTimeout
	}
	return f.Timeout
}

// to records a state transition.
func (a *attempt) to(s State) {
	from := a.state
	a.state = s
	logDebug(a, "login state transition", "from", from.String())
}

// fail moves the attempt to StateFailed and builds the host-facing outcome.
func (a *attempt) fail(kind Kind, err error) Outcome {
	failedAt := a.state
	a.state = StateFailed
	logWarn(a, "login failed", "kind", string(kind), "failed_at", failedAt.String(), "error", err)
	return Outcome{
		AttemptID: a.id.String(),
		Provider:  a.provider,
		Kind:      kind,
		Message:   err.Error(),
	}
}
