// registry_test.go -- unit tests for Registry and ProviderConfig.Validate.
package oauth

import (
	"errors"
	"slices"
	"testing"
)

func TestRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(Google("id", "secret")); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	got, err := r.Get("google")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.ClientID != "id" {
		t.Errorf("client id: expected 'id', got %q", got.ClientID)
	}
}

func TestRegister_CopiesMutableFields(t *testing.T) {
	r := NewRegistry()
	p := Google("id", "secret")
	if err := r.Register(p); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	p.ExtraAuthParams["prompt"] = "none"
	p.Scopes[0] = "changed"

	got, _ := r.Get("google")
	if got.ExtraAuthParams["prompt"] != "consent" || got.Scopes[0] != "openid" {
		t.Errorf("registered config was mutated through caller's copy: %+v", got)
	}
}

func TestUnknownProvider(t *testing.T) {
	_, err := NewRegistry().Get("unknown")
	if !errors.Is(err, ErrProviderNotFound) {
		t.Errorf("expected ErrProviderNotFound, got %v", err)
	}
}

func TestDuplicateProvider(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(Microsoft("id")); err != nil {
		t.Fatalf("first Register error: %v", err)
	}
	if err := r.Register(Microsoft("id")); !errors.Is(err, ErrDuplicateProvider) {
		t.Errorf("expected ErrDuplicateProvider, got %v", err)
	}
}

func TestRegister_RejectsResponseModeOverride(t *testing.T) {
	p := Microsoft("id")
	p.ExtraAuthParams = map[string]string{"response_mode": "fragment"}

	r := NewRegistry()
	if err := r.Register(p); !errors.Is(err, ErrInvalidProvider) {
		t.Fatalf("expected ErrInvalidProvider, got %v", err)
	}
	if _, err := r.Get("microsoft"); !errors.Is(err, ErrProviderNotFound) {
		t.Errorf("rejected provider must not be registered, got %v", err)
	}
}

func TestIDs(t *testing.T) {
	r := NewRegistry()
	r.Register(Microsoft("m"))
	r.Register(Google("g", "s"))

	if got := r.IDs(); !slices.Equal(got, []string{"google", "microsoft"}) {
		t.Errorf("expected [google microsoft], got %v", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *ProviderConfig)
	}{
		{"missing client id", func(p *ProviderConfig) { p.ClientID = "" }},
		{"missing token endpoint", func(p *ProviderConfig) { p.TokenEndpoint = "" }},
		{"relative redirect path", func(p *ProviderConfig) { p.RedirectPath = "google-callback" }},
		{"fragment response mode", func(p *ProviderConfig) { p.ResponseMode = "fragment" }},
		{"missing display name path", func(p *ProviderConfig) { p.DisplayNamePath = "" }},
		{"reserved extra param", func(p *ProviderConfig) { p.ExtraAuthParams["state"] = "fixed" }},
		{"response mode via extra params", func(p *ProviderConfig) { p.ExtraAuthParams["response_mode"] = "fragment" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := Google("id", "secret")
			tc.mutate(&p)
			if err := p.Validate(); !errors.Is(err, ErrInvalidProvider) {
				t.Errorf("expected ErrInvalidProvider, got %v", err)
			}
		})
	}

	t.Run("built-ins are valid", func(t *testing.T) {
		for _, p := range []ProviderConfig{Google("id", "secret"), Microsoft("id")} {
			if err := p.Validate(); err != nil {
				t.Errorf("%s: unexpected error %v", p.ID, err)
			}
		}
	})
}
