// pkce.go -- PKCE (RFC 7636) material and anti-CSRF state tokens.
package oauth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/oauth2"
)

// MethodS256 is the only challenge method sent to providers.
const MethodS256 = "S256"

// stateBytes gives 128 bits of entropy; the token only has to be unguessable and unique.
const stateBytes = 16

// GeneratePKCE returns a fresh verifier (32 random bytes, base64url, 43 chars)
// and its challenge BASE64URL(SHA256(verifier)) without padding.
// A failing random source panics inside x/oauth2; there is nothing to recover.
func GeneratePKCE() PKCE {
	verifier := oauth2.GenerateVerifier()
	return PKCE{
		Verifier:  verifier,
		Challenge: oauth2.S256ChallengeFromVerifier(verifier),
		Method:    MethodS256,
	}
}

// GenerateState returns a random URL-safe state token for one login attempt.
func GenerateState() (string, error) {
	var b [stateBytes]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("generating state with rand: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b[:]), nil
}
