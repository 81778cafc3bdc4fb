// main_test.go
//
// Smoke tests for the command tree and host wiring.
// The login path runs against an httptest provider and a scripted "browser"
// that follows the authorization URL straight to the loopback redirect.

package main

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/MGallo-Code/charon-loopback/internal/auth"
	"github.com/MGallo-Code/charon-loopback/internal/config"
	"github.com/MGallo-Code/charon-loopback/internal/oauth"
)

// --- Smoke helpers ---

// setRequiredEnv sets the three client credentials LoadConfig insists on.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GOOGLE_CLIENT_ID", "g-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "g-secret")
	t.Setenv("MICROSOFT_CLIENT_ID", "m-id")
}

// consentOpener answers the authorization URL the way a consenting user + provider would.
type consentOpener struct{ t *testing.T }

func (o consentOpener) Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	q := u.Query()
	resp, err := http.Get(q.Get("redirect_uri") + "?code=c1&state=" + url.QueryEscape(q.Get("state")))
	if err != nil {
		o.t.Errorf("following redirect: %v", err)
		return nil
	}
	resp.Body.Close()
	return nil
}

// smokeFlow builds a Flow whose "microsoft" provider points at an httptest server.
func smokeFlow(t *testing.T, profileBody string) *auth.Flow {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at","token_type":"Bearer"}`))
	})
	mux.HandleFunc("GET /me", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(profileBody))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	p := oauth.Microsoft("m-id")
	p.TokenEndpoint = srv.URL + "/token"
	p.ProfileEndpoint = srv.URL + "/me"
	reg := oauth.NewRegistry()
	if err := reg.Register(p); err != nil {
		t.Fatalf("Register: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("finding free port: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	return &auth.Flow{
		Providers:    reg,
		Client:       oauth.NewClient(nil, 5*time.Second),
		Opener:       consentOpener{t: t},
		ListenAddr:   addr,
		RedirectBase: "http://" + addr,
		Timeout:      5 * time.Second,
	}
}

// --- runLogin ---

func TestRunLogin_PrintsWelcome(t *testing.T) {
	f := smokeFlow(t, `{"displayName":"Grace Hopper"}`)

	var out bytes.Buffer
	if err := runLogin(context.Background(), f, "microsoft", &out); err != nil {
		t.Fatalf("runLogin failed: %v", err)
	}
	if out.String() != "Welcome, Grace Hopper!\n" {
		t.Errorf("output: expected welcome line, got %q", out.String())
	}
}

func TestRunLogin_PrintsError(t *testing.T) {
	f := smokeFlow(t, `{"id":"no-name"}`)

	var out bytes.Buffer
	err := runLogin(context.Background(), f, "microsoft", &out)
	if !errors.Is(err, errLoginFailed) {
		t.Fatalf("expected errLoginFailed, got %v", err)
	}
	if !strings.HasPrefix(out.String(), "Error: ") || !strings.Contains(out.String(), "displayName") {
		t.Errorf("output: expected error line naming the missing field, got %q", out.String())
	}
}

// --- buildRegistry / buildFlow ---

func TestBuildFlow(t *testing.T) {
	cfg := &config.Config{
		GoogleClientID:     "g-id",
		GoogleClientSecret: "g-secret",
		MicrosoftClientID:  "m-id",
		RedirectHost:       "localhost",
		RedirectPort:       12345,
		CallbackTimeout:    time.Minute,
		HTTPTimeout:        time.Second,
	}

	f, err := buildFlow(cfg, consentOpener{t: t})
	if err != nil {
		t.Fatalf("buildFlow failed: %v", err)
	}
	if f.ListenAddr != "localhost:12345" || f.RedirectBase != "http://localhost:12345" {
		t.Errorf("listener: got addr %q base %q", f.ListenAddr, f.RedirectBase)
	}

	g, err := f.Providers.Get("google")
	if err != nil {
		t.Fatalf("google not registered: %v", err)
	}
	if g.ClientSecret != "g-secret" || g.RedirectURI(f.RedirectBase) != "http://localhost:12345/google-callback" {
		t.Errorf("google config: %+v", g)
	}

	m, err := f.Providers.Get("microsoft")
	if err != nil {
		t.Fatalf("microsoft not registered: %v", err)
	}
	if m.ClientSecret != "" {
		t.Error("microsoft is a public client; expected no secret")
	}
}

// --- Command tree ---

func TestRootCmd_MissingConfigIsFatal(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MICROSOFT_CLIENT_ID", "")

	var out bytes.Buffer
	cmd := newRootCmd(consentOpener{t: t}, &out)
	cmd.SetArgs([]string{"providers"})

	err := cmd.Execute()
	if err == nil || errors.Is(err, errLoginFailed) {
		t.Fatalf("expected config error, got %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("expected no output before config loads, got %q", out.String())
	}
}

func TestRootCmd_Providers(t *testing.T) {
	setRequiredEnv(t)

	var out bytes.Buffer
	cmd := newRootCmd(consentOpener{t: t}, &out)
	cmd.SetArgs([]string{"providers"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("providers failed: %v", err)
	}
	if out.String() != "google\nmicrosoft\n" {
		t.Errorf("output: expected google and microsoft, got %q", out.String())
	}
}

func TestRootCmd_LoginUnknownProvider(t *testing.T) {
	setRequiredEnv(t)

	var out bytes.Buffer
	cmd := newRootCmd(consentOpener{t: t}, &out)
	cmd.SetArgs([]string{"login", "github"})

	if err := cmd.Execute(); !errors.Is(err, errLoginFailed) {
		t.Fatalf("expected errLoginFailed, got %v", err)
	}
	if !strings.Contains(out.String(), "provider not found") {
		t.Errorf("output: expected unknown provider error, got %q", out.String())
	}
}

func TestRootCmd_LoginRequiresProviderArg(t *testing.T) {
	setRequiredEnv(t)

	cmd := newRootCmd(consentOpener{t: t}, &bytes.Buffer{})
	cmd.SetArgs([]string{"login"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected argument error, got nil")
	}
}
