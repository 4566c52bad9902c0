package main

import (
	"bufio"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/spotstats/internal/models"
	"github.com/desertthunder/spotstats/internal/server"
	"github.com/desertthunder/spotstats/internal/shared"
	"github.com/urfave/cli/v3"
)

// openBrowser is replaced in tests.
var openBrowser = shared.OpenBrowser

// AuthLogin performs the authorization-code flow through a local callback server.
//
// Starts a server on the redirect URI's address, opens the browser for user authorization, and waits for the
// provider to redirect back with a code.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}

	token, err := r.doOAuth(ctx, cmd.Bool("no-browser"), cmd.Duration("timeout"))
	if err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Token valid until %s\n\n", token.ExpiresAt.Local().Format(time.DateTime))
	r.writePlain("You can now use: spotstats top tracks\n")
	return nil
}

// callbackAddr returns the listen address and path for the configured redirect URI.
func callbackAddr(config *shared.Config) (addr, path string, err error) {
	u, err := url.Parse(config.Credentials.Spotify.RedirectURI)
	if err != nil || u.Host == "" {
		return "", "", fmt.Errorf("%w: credentials.spotify.redirect_uri %q is not an absolute URL",
			shared.ErrInvalidConfig, config.Credentials.Spotify.RedirectURI)
	}
	if u.Port() == "" {
		return u.Hostname() + ":80", u.Path, nil
	}
	return u.Host, u.Path, nil
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(ctx context.Context, noBrowser bool, timeout time.Duration) (models.Token, error) {
	authURL, err := r.session.BeginLogin()
	if err != nil {
		return models.Token{}, err
	}

	addr, path, err := callbackAddr(r.config)
	if err != nil {
		return models.Token{}, err
	}

	handler := server.NewCallbackHandler(r.session, path)
	router := server.NewBasicRouter()
	router.Use(server.Recover(r.logger))
	router.Handler(handler)

	srv, err := server.Listen(addr, router, r.logger)
	if err != nil {
		return models.Token{}, err
	}

	serveCtx, stopServer := context.WithCancel(ctx)
	serverErrors := make(chan error, 1)
	go func() { serverErrors <- srv.Run(serveCtx) }()
	defer func() {
		stopServer()
		if err := <-serverErrors; err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	if noBrowser {
		r.writePlain("Open this URL in your browser:\n%s\n\n", authURL)
	} else {
		r.writePlain("→ Opening browser for Spotify authorization...\n")
		if err := openBrowser(authURL); err != nil {
			r.logger.Warnf("failed to open browser automatically %v", err)
			r.writePlainln("⚠ Could not open browser automatically.")
			r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
		}
	}

	if timeout <= 0 {
		timeout = defaultLoginTimeout
	}
	r.writePlain("→ Waiting for authorization (%s timeout)...\n", timeout)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-handler.Result():
		if result.Error() != nil {
			return models.Token{}, fmt.Errorf("authorization failed: %w", result.Error())
		}
		return result.Token, nil
	case <-timer.C:
		return models.Token{}, fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return models.Token{}, ctx.Err()
	}
}

// AuthPaste exchanges a pasted redirect URL or code.
//
// Without an argument it starts a login, prints the authorization URL, and reads the redirect URL from input.
func (r *Runner) AuthPaste(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}

	input := cmd.StringArg("url")
	if input == "" {
		authURL, err := r.session.BeginLogin()
		if err != nil {
			return err
		}

		r.writePlain("1. Open this URL in your browser and approve access:\n%s\n\n", authURL)
		r.writePlain("2. Paste the URL you were redirected to (or just the code): ")

		line, err := bufio.NewReader(r.input).ReadString('\n')
		if err != nil && strings.TrimSpace(line) == "" {
			return fmt.Errorf("%w: no callback URL provided", shared.ErrMissingArgument)
		}
		input = line
	}

	token, err := r.session.Exchange(ctx, strings.TrimSpace(input))
	if err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Token valid until %s\n", token.ExpiresAt.Local().Format(time.DateTime))
	return nil
}

type authStatus struct {
	State     string    `json:"state"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
	Expired   bool      `json:"expired"`
	Scope     string    `json:"scope,omitempty"`
}

// AuthStatus prints the session state without touching the network.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}

	status := authStatus{State: r.session.State().String()}
	if token, ok := r.session.Current(); ok {
		status.ExpiresAt = token.ExpiresAt
		status.Expired = token.Expired(time.Now())
		status.Scope = token.Scope
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, true)
	}

	switch {
	case status.State != models.Authenticated.String():
		r.writePlain("✗ Not authenticated (%s)\n", status.State)
		return r.writePlain("Run: spotstats auth login\n")
	case status.Expired:
		r.writePlain("✓ Authenticated\n")
		return r.writePlain("Access token expired at %s; it will be refreshed on the next request\n",
			status.ExpiresAt.Local().Format(time.DateTime))
	default:
		r.writePlain("✓ Authenticated\n")
		r.writePlain("Scope: %s\n", status.Scope)
		return r.writePlain("Access token valid until %s\n", status.ExpiresAt.Local().Format(time.DateTime))
	}
}

// AuthLogout clears the stored token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}

	if err := r.session.Logout(ctx); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}

	r.logger.Info("logged out")
	return r.writePlain("✓ Logged out\n")
}
