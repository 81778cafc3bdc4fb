package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/MGallo-Code/charon-loopback/internal/auth"
	"github.com/MGallo-Code/charon-loopback/internal/browser"
	"github.com/MGallo-Code/charon-loopback/internal/config"
	"github.com/MGallo-Code/charon-loopback/internal/oauth"

	"github.com/spf13/cobra"
)

// errLoginFailed marks a login that ran and failed; the outcome is already printed.
var errLoginFailed = errors.New("login failed")

func main() {
	// Cancel ctx on SIGINT/SIGTERM; an in-flight login stops waiting for the browser.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := newRootCmd(browser.System{}, os.Stdout).ExecuteContext(ctx)
	if errors.Is(err, errLoginFailed) {
		stop()
		os.Exit(1)
	}
	if err != nil {
		slog.Error("fatal", "err", err)
		stop()
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. opener and out are injected so tests can
// run commands without a real browser or terminal.
func newRootCmd(opener browser.Opener, out io.Writer) *cobra.Command {
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "charon-loopback",
		Short:         "Sign in with an OAuth provider through the system browser",
		SilenceUsage:  true,
		SilenceErrors: true,
		// Config is loaded once, before any subcommand; missing credentials are fatal.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.LoadConfig()
			if err != nil {
				return err
			}
			cfg = c

			// Include source location in log entries at debug level only.
			slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level:     cfg.LogLevel,
				AddSource: cfg.LogLevel == slog.LevelDebug,
			})))
			return nil
		},
	}

	var noBrowser bool
	login := &cobra.Command{
		Use:   "login <provider>",
		Short: "Run one browser login and print the signed-in user's name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			op := opener
			if noBrowser {
				op = browser.Printer{W: out}
			}
			f, err := buildFlow(cfg, op)
			if err != nil {
				return err
			}
			return runLogin(cmd.Context(), f, args[0], out)
		},
	}
	login.Flags().BoolVar(&noBrowser, "no-browser", false, "print the sign-in URL instead of opening a browser")

	providers := &cobra.Command{
		Use:   "providers",
		Short: "List the configured providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := buildRegistry(cfg)
			if err != nil {
				return err
			}
			for _, id := range reg.IDs() {
				fmt.Fprintln(out, id)
			}
			return nil
		},
	}

	root.AddCommand(login, providers)
	return root
}

// buildRegistry registers the built-in providers with the configured credentials.
func buildRegistry(cfg *config.Config) (*oauth.Registry, error) {
	reg := oauth.NewRegistry()
	for _, p := range []oauth.ProviderConfig{
		oauth.Google(cfg.GoogleClientID, cfg.GoogleClientSecret),
		oauth.Microsoft(cfg.MicrosoftClientID),
	} {
		if err := reg.Register(p); err != nil {
			return nil, fmt.Errorf("registering %s provider: %w", p.ID, err)
		}
	}
	return reg, nil
}

// buildFlow wires the login engine from config and the host's opener.
func buildFlow(cfg *config.Config, opener browser.Opener) (*auth.Flow, error) {
	reg, err := buildRegistry(cfg)
	if err != nil {
		return nil, err
	}
	return &auth.Flow{
		Providers:    reg,
		Client:       oauth.NewClient(nil, cfg.HTTPTimeout),
		Opener:       opener,
		ListenAddr:   cfg.ListenAddr(),
		RedirectBase: cfg.RedirectBase(),
		Timeout:      cfg.CallbackTimeout,
	}, nil
}

// runLogin runs one attempt and prints the outcome the way the host shows it to the user.
// Returns errLoginFailed when the attempt did not produce a display name.
func runLogin(ctx context.Context, f *auth.Flow, providerID string, out io.Writer) error {
	outcome := f.Login(ctx, providerID)
	if !outcome.Success() {
		fmt.Fprintf(out, "Error: %s\n", outcome.Message)
		return errLoginFailed
	}
	fmt.Fprintf(out, "Welcome, %s!\n", outcome.DisplayName)
	return nil
}
