package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotstats/internal/models"
	"github.com/desertthunder/spotstats/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"

	// defaultTokenLifetime applies when the token endpoint omits expires_in.
	defaultTokenLifetime = time.Hour
)

// OAuthOptions configures an [OAuthClient].
type OAuthOptions struct {
	Credentials shared.SpotifyConfig
	Store       TokenStore
	HTTPClient  *http.Client
	Timeout     time.Duration // per round-trip, defaults to [shared.DefaultRequestTimeout]
	Logger      *log.Logger
	AuthURL     string // overrides the Spotify authorize endpoint
	TokenURL    string // overrides the Spotify token endpoint
	Now         func() time.Time
}

// OAuthClient runs the authorization-code flow against the Spotify accounts service and keeps the stored token
// valid.
//
// Token reads, refreshes, and writes happen under one mutex, so concurrent callers never race two refreshes
// against each other.
type OAuthClient struct {
	creds      shared.SpotifyConfig
	config     *oauth2.Config
	store      TokenStore
	httpClient *http.Client
	timeout    time.Duration
	logger     *log.Logger
	now        func() time.Time

	mu           sync.Mutex
	state        models.AuthState
	token        *models.Token
	pendingState string
}

// NewOAuthClient creates a client and restores any token already in the store.
func NewOAuthClient(ctx context.Context, opts OAuthOptions) (*OAuthClient, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: token store is required", shared.ErrInvalidArgument)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = shared.DefaultRequestTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.AuthURL == "" {
		opts.AuthURL = spotifyAuthURL
	}
	if opts.TokenURL == "" {
		opts.TokenURL = spotifyTokenURL
	}

	c := &OAuthClient{
		creds:      opts.Credentials,
		config:     newOAuthConfig(opts.Credentials, opts.AuthURL, opts.TokenURL),
		store:      opts.Store,
		httpClient: opts.HTTPClient,
		timeout:    opts.Timeout,
		logger:     opts.Logger,
		now:        opts.Now,
		state:      models.Unauthenticated,
	}

	token, err := opts.Store.Load(ctx)
	switch {
	case errors.Is(err, shared.ErrNoToken):
	case err != nil:
		return nil, fmt.Errorf("failed to restore token: %w", err)
	default:
		c.token = &token
		c.state = models.Authenticated
	}

	return c, nil
}

func newOAuthConfig(creds shared.SpotifyConfig, authURL, tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  creds.RedirectURI,
		Scopes:       strings.Fields(creds.Scope),
		Endpoint: oauth2.Endpoint{
			AuthURL:   authURL,
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

// BuildAuthorizationURL returns the Spotify authorize URL for creds.
//
// The query carries client_id, redirect_uri, response_type=code, scope, show_dialog=true (forcing the consent
// screen), and state when non-empty. The result depends only on the arguments.
func BuildAuthorizationURL(creds shared.SpotifyConfig, state string) string {
	return buildAuthorizationURL(newOAuthConfig(creds, spotifyAuthURL, spotifyTokenURL), state)
}

func buildAuthorizationURL(config *oauth2.Config, state string) string {
	return config.AuthCodeURL(state, oauth2.SetAuthURLParam("show_dialog", "true"))
}

// AuthorizationURL returns the authorize URL for the configured credentials without changing state.
func (c *OAuthClient) AuthorizationURL(state string) (string, error) {
	if err := c.validateConfig(); err != nil {
		return "", err
	}
	return buildAuthorizationURL(c.config, state), nil
}

// BeginLogin starts a login attempt: it generates a CSRF state value, moves the session to
// [models.AwaitingCallback], and returns the URL the user must open.
func (c *OAuthClient) BeginLogin() (string, error) {
	if err := c.validateConfig(); err != nil {
		return "", err
	}

	state := shared.GenerateState()

	c.mu.Lock()
	c.pendingState = state
	c.state = models.AwaitingCallback
	c.mu.Unlock()

	c.logger.Debug("login started", "state", state)
	return buildAuthorizationURL(c.config, state), nil
}

// ParseCallback extracts the authorization code (and state, if present) from input.
//
// input may be a bare code or the full URL the provider redirected to. A URL without a code parameter fails
// with [shared.ErrMalformedCallback]; if the provider sent an error parameter instead, it is included.
func ParseCallback(input string) (code, state string, err error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", "", &AuthError{Kind: shared.ErrMalformedCallback, Err: errors.New("empty callback")}
	}

	if !looksLikeURL(input) {
		if strings.ContainsAny(input, " \t\r\n") {
			return "", "", &AuthError{Kind: shared.ErrMalformedCallback, Err: errors.New("code must not contain whitespace")}
		}
		return input, "", nil
	}

	query, err := callbackQuery(input)
	if err != nil {
		return "", "", &AuthError{Kind: shared.ErrMalformedCallback, Err: err}
	}

	code = query.Get("code")
	if code == "" {
		if providerErr := query.Get("error"); providerErr != "" {
			return "", "", &AuthError{
				Kind: shared.ErrMalformedCallback,
				Code: providerErr,
				Err:  fmt.Errorf("provider returned %q instead of a code", providerErr),
			}
		}
		return "", "", &AuthError{Kind: shared.ErrMalformedCallback, Err: errors.New("no code parameter in callback URL")}
	}

	return code, query.Get("state"), nil
}

func looksLikeURL(input string) bool {
	return strings.Contains(input, "://") || strings.ContainsAny(input, "?=&/")
}

func callbackQuery(input string) (url.Values, error) {
	u, err := url.Parse(input)
	if err != nil {
		return nil, fmt.Errorf("invalid callback URL: %w", err)
	}

	if u.RawQuery != "" {
		return u.Query(), nil
	}

	// A bare query string such as "code=abc&state=xyz".
	if strings.Contains(input, "=") && !strings.Contains(input, "/") {
		return url.ParseQuery(strings.TrimPrefix(input, "?"))
	}

	return url.Values{}, nil
}

// Exchange trades an authorization code for a token, accepting either a bare code or the pasted callback URL.
//
// A state value in the URL must match the pending login, when there is one. On success the token is stored and the
// session becomes [models.Authenticated]; on failure the session state is unchanged so the caller can retry with
// a fresh authorization attempt.
func (c *OAuthClient) Exchange(ctx context.Context, input string) (models.Token, error) {
	return c.exchange(ctx, input, false)
}

// CompleteLogin handles a redirect to the local callback server. Unlike [OAuthClient.Exchange] it requires a
// pending login and a matching state value.
func (c *OAuthClient) CompleteLogin(ctx context.Context, callbackURL string) (models.Token, error) {
	return c.exchange(ctx, callbackURL, true)
}

func (c *OAuthClient) exchange(ctx context.Context, input string, strict bool) (models.Token, error) {
	if err := c.validateConfig(); err != nil {
		return models.Token{}, err
	}

	code, state, err := ParseCallback(input)
	if err != nil {
		return models.Token{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if strict && c.pendingState == "" {
		return models.Token{}, &AuthError{Kind: shared.ErrMalformedCallback, Err: errors.New("no login in progress")}
	}
	if (strict || (state != "" && c.pendingState != "")) && state != c.pendingState {
		return models.Token{}, &AuthError{Kind: shared.ErrMalformedCallback, Err: errors.New("state parameter does not match")}
	}

	rctx, cancel := c.requestContext(ctx)
	defer cancel()

	tok, err := c.config.Exchange(rctx, code)
	if err != nil {
		c.logger.Warn("authorization code exchange failed", "error", err)
		return models.Token{}, tokenEndpointError(shared.ErrExchangeRejected, err)
	}

	token := c.fromOAuth(tok, c.creds.Scope)
	if err := c.store.Save(ctx, token); err != nil {
		return models.Token{}, fmt.Errorf("failed to persist token: %w", err)
	}

	c.token = &token
	c.state = models.Authenticated
	c.pendingState = ""

	c.logger.Info("authorization complete", "scope", token.Scope, "expires_at", token.ExpiresAt.Format(time.RFC3339))
	return token, nil
}

// ValidToken returns a token that is usable now.
//
// While the cached token has not reached its expiry no network call is made. An expired token is refreshed with
// exactly one round-trip; if the refresh fails the store is cleared, the session returns to
// [models.Unauthenticated], and [shared.ErrSessionExpired] is returned.
func (c *OAuthClient) ValidToken(ctx context.Context) (models.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	token, err := c.currentLocked(ctx)
	if err != nil {
		return models.Token{}, err
	}

	if !token.Expired(c.now()) {
		return token, nil
	}

	c.logger.Debug("access token expired, refreshing", "expired_at", token.ExpiresAt)
	return c.refreshLocked(ctx, token)
}

// Refresh forces a refresh round-trip, e.g. after the API rejected a token that had not reached its expiry.
func (c *OAuthClient) Refresh(ctx context.Context) (models.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	token, err := c.currentLocked(ctx)
	if err != nil {
		return models.Token{}, err
	}

	return c.refreshLocked(ctx, token)
}

// Logout clears the stored token and returns the session to [models.Unauthenticated].
func (c *OAuthClient) Logout(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = nil
	c.state = models.Unauthenticated
	c.pendingState = ""

	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}

	c.logger.Info("logged out")
	return nil
}

// State returns the session's position in the authorization flow.
func (c *OAuthClient) State() models.AuthState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Current returns the cached token without refreshing it.
func (c *OAuthClient) Current() (models.Token, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == nil {
		return models.Token{}, false
	}
	return *c.token, true
}

func (c *OAuthClient) currentLocked(ctx context.Context) (models.Token, error) {
	if c.token != nil {
		return *c.token, nil
	}

	token, err := c.store.Load(ctx)
	if errors.Is(err, shared.ErrNoToken) {
		return models.Token{}, &AuthError{Kind: shared.ErrNotAuthenticated}
	}
	if err != nil {
		return models.Token{}, fmt.Errorf("failed to load token: %w", err)
	}

	c.token = &token
	if c.state == models.Unauthenticated {
		c.state = models.Authenticated
	}
	return token, nil
}

func (c *OAuthClient) refreshLocked(ctx context.Context, token models.Token) (models.Token, error) {
	if err := c.validateConfig(); err != nil {
		return models.Token{}, err
	}

	if !token.CanRefresh() {
		return models.Token{}, c.expireLocked(ctx, &AuthError{Kind: shared.ErrSessionExpired, Err: errors.New("no refresh token available")})
	}

	rctx, cancel := c.requestContext(ctx)
	defer cancel()

	// An empty access token makes the source refresh immediately, regardless of the oauth2 package's own clock.
	tok, err := c.config.TokenSource(rctx, &oauth2.Token{RefreshToken: token.RefreshToken}).Token()
	if err != nil {
		if ctx.Err() != nil {
			return models.Token{}, fmt.Errorf("token refresh interrupted: %w", ctx.Err())
		}
		c.logger.Warn("token refresh failed", "error", err)
		if !providerRejected(err) {
			return models.Token{}, tokenEndpointError(shared.ErrTransient, err)
		}
		return models.Token{}, c.expireLocked(ctx, tokenEndpointError(shared.ErrSessionExpired, err))
	}

	next := c.fromOAuth(tok, token.Scope)
	if next.RefreshToken == "" {
		next.RefreshToken = token.RefreshToken
	}

	if err := c.store.Save(ctx, next); err != nil {
		return models.Token{}, fmt.Errorf("failed to persist refreshed token: %w", err)
	}

	c.token = &next
	c.state = models.Authenticated

	c.logger.Debug("token refreshed", "expires_at", next.ExpiresAt.Format(time.RFC3339))
	return next, nil
}

func (c *OAuthClient) expireLocked(ctx context.Context, cause error) error {
	c.token = nil
	c.state = models.Unauthenticated

	if err := c.store.Clear(ctx); err != nil {
		c.logger.Error("failed to clear expired token", "error", err)
	}

	return cause
}

func (c *OAuthClient) validateConfig() error {
	if err := c.creds.Validate(); err != nil {
		return &AuthError{Kind: shared.ErrMissingConfig, Err: err}
	}
	return nil
}

// requestContext bounds a token endpoint round-trip and routes it through the configured HTTP client.
func (c *OAuthClient) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	return context.WithTimeout(ctx, c.timeout)
}

// fromOAuth converts an oauth2 token, computing the expiry on the client's clock.
func (c *OAuthClient) fromOAuth(tok *oauth2.Token, fallbackScope string) models.Token {
	token := models.Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Scope:        fallbackScope,
	}

	if scope, ok := tok.Extra("scope").(string); ok && scope != "" {
		token.Scope = scope
	}

	switch lifetime := expiresIn(tok); {
	case lifetime > 0:
		token.ExpiresAt = c.now().Add(lifetime)
	case !tok.Expiry.IsZero():
		token.ExpiresAt = tok.Expiry
	default:
		token.ExpiresAt = c.now().Add(defaultTokenLifetime)
	}

	return token
}

func expiresIn(tok *oauth2.Token) time.Duration {
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		return time.Duration(v) * time.Second
	case int64:
		return time.Duration(v) * time.Second
	case string:
		if secs, err := strconv.Atoi(v); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return 0
}

// providerRejected reports whether the token endpoint answered with a client error.
// Network failures and 5xx responses leave the stored refresh token usable.
func providerRejected(err error) bool {
	var retrieveErr *oauth2.RetrieveError
	if !errors.As(err, &retrieveErr) {
		return false
	}
	return retrieveErr.Response == nil || retrieveErr.Response.StatusCode < http.StatusInternalServerError
}

// tokenEndpointError wraps a token endpoint failure, keeping the provider's response when there is one.
func tokenEndpointError(kind, err error) *AuthError {
	authErr := &AuthError{Kind: kind, Err: err}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		authErr.Code = retrieveErr.ErrorCode
		authErr.Payload = string(retrieveErr.Body)
		if retrieveErr.Response != nil {
			authErr.Status = retrieveErr.Response.StatusCode
		}
	}

	return authErr
}
