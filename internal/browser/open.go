// open.go -- Opening the authorization URL outside the process.
package browser

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"

	clibrowser "github.com/cli/browser"
)

var ErrUnsupportedURL = errors.New("refusing to open non-http url")

// openURL launches the user's browser ($BROWSER, then the platform default).
var openURL = clibrowser.OpenURL

func init() {
	// Launcher output belongs on stderr; stdout carries the command result.
	clibrowser.Stdout = os.Stderr
}

// Opener hands a URL to something outside the engine, normally the user's default browser.
// Open must not block on the browser; the engine waits on the callback listener instead.
type Opener interface {
	Open(rawURL string) error
}

// System opens URLs with the user's default browser.
type System struct{}

// Open returns once the launcher has handed the URL to the browser.
func (System) Open(rawURL string) error {
	if err := checkURL(rawURL); err != nil {
		return err
	}
	if err := openURL(rawURL); err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}
	return nil
}

// Printer writes the URL for the user to open by hand (--no-browser, headless sessions).
type Printer struct {
	W io.Writer
}

func (p Printer) Open(rawURL string) error {
	if err := checkURL(rawURL); err != nil {
		return err
	}
	_, err := fmt.Fprintf(p.W, "Open this URL in your browser to continue:\n%s\n", rawURL)
	return err
}

func checkURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedURL, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("%w: scheme %q", ErrUnsupportedURL, u.Scheme)
	}
	return nil
}
