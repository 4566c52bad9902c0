// Spotify Web API implementation of [StatsService]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotstats/internal/models"
	"github.com/desertthunder/spotstats/internal/shared"
	"golang.org/x/time/rate"
)

const (
	spotifyBaseURL = "https://api.spotify.com/v1"

	// MaxLimit is the largest page the top items endpoints accept.
	MaxLimit = 50

	defaultRateLimit    = 5.0
	defaultMaxRetries   = 3
	defaultRetryDelay   = 500 * time.Millisecond
	defaultMaxRetryWait = 30 * time.Second
)

type followers struct {
	Total int `json:"total"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Email       string         `json:"email"`
	Country     string         `json:"country"`
	Product     string         `json:"product"` // premium, free, etc.
	Followers   followers      `json:"followers"`
	Images      []SpotifyImage `json:"images"`
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Artists      []SpotifyArtist `json:"artists"`
	Album        SpotifyAlbum    `json:"album"`
	DurationMS   int             `json:"duration_ms"`
	Explicit     bool            `json:"explicit"`
	Popularity   int             `json:"popularity"`
	PreviewURL   *string         `json:"preview_url"`
	ExternalURLs externalURLs    `json:"external_urls"`
	URI          string          `json:"uri"`
}

// SpotifyArtist represents a Spotify artist. Simplified artist objects nested in tracks carry no genres.
type SpotifyArtist struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Genres       []string       `json:"genres"`
	Images       []SpotifyImage `json:"images"`
	Popularity   int            `json:"popularity"`
	Followers    followers      `json:"followers"`
	ExternalURLs externalURLs   `json:"external_urls"`
	URI          string         `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	ReleaseDate string         `json:"release_date"`
	TotalTracks int            `json:"total_tracks"`
	Images      []SpotifyImage `json:"images"`
	URI         string         `json:"uri"`
}

// SpotifyPage is a paginated response from the top items endpoints.
type SpotifyPage[T any] struct {
	Items    []T     `json:"items"`
	Total    int     `json:"total"`
	Limit    int     `json:"limit"`
	Offset   int     `json:"offset"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
}

type spotifyErrorBody struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// SpotifyOptions configures a [SpotifyService]. Zero values select the defaults.
type SpotifyOptions struct {
	Tokens       TokenProvider
	BaseURL      string
	HTTPClient   *http.Client
	Timeout      time.Duration // per attempt
	RateLimit    float64       // requests per second
	MaxRetries   int           // total attempts for rate-limited and transient failures
	RetryDelay   time.Duration // base of the exponential backoff
	MaxRetryWait time.Duration // longest Retry-After the service will wait out
	Logger       *log.Logger
	Now          func() time.Time
}

// SpotifyService reads top items and the profile of the authenticated user.
type SpotifyService struct {
	tokens       TokenProvider
	baseURL      string
	httpClient   *http.Client
	timeout      time.Duration
	limiter      *rate.Limiter
	maxRetries   uint
	retryDelay   time.Duration
	maxRetryWait time.Duration
	logger       *log.Logger
	now          func() time.Time
}

// NewSpotifyService creates a service that authenticates every request with a token from opts.Tokens.
func NewSpotifyService(opts SpotifyOptions) (*SpotifyService, error) {
	if opts.Tokens == nil {
		return nil, fmt.Errorf("%w: token provider is required", shared.ErrInvalidArgument)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = spotifyBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = shared.DefaultRequestTimeout
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultRateLimit
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	if opts.MaxRetryWait <= 0 {
		opts.MaxRetryWait = defaultMaxRetryWait
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &SpotifyService{
		tokens:       opts.Tokens,
		baseURL:      strings.TrimSuffix(opts.BaseURL, "/"),
		httpClient:   opts.HTTPClient,
		timeout:      opts.Timeout,
		limiter:      rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		maxRetries:   uint(opts.MaxRetries),
		retryDelay:   opts.RetryDelay,
		maxRetryWait: opts.MaxRetryWait,
		logger:       opts.Logger,
		now:          opts.Now,
	}, nil
}

// TopTracks returns up to limit of the user's most played tracks over timeRange, in the provider's ranking order.
func (s *SpotifyService) TopTracks(ctx context.Context, limit int, timeRange models.TimeRange) ([]models.Track, error) {
	query, err := topItemsQuery(limit, timeRange)
	if err != nil {
		return nil, err
	}

	var page SpotifyPage[SpotifyTrack]
	if err := s.doRequest(ctx, "/me/top/tracks", query, &page); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(page.Items))
	for _, item := range page.Items {
		tracks = append(tracks, item.toModel())
	}
	return tracks, nil
}

// TopArtists returns up to limit of the user's most played artists over timeRange, in the provider's ranking order.
func (s *SpotifyService) TopArtists(ctx context.Context, limit int, timeRange models.TimeRange) ([]models.Artist, error) {
	query, err := topItemsQuery(limit, timeRange)
	if err != nil {
		return nil, err
	}

	var page SpotifyPage[SpotifyArtist]
	if err := s.doRequest(ctx, "/me/top/artists", query, &page); err != nil {
		return nil, err
	}

	artists := make([]models.Artist, 0, len(page.Items))
	for _, item := range page.Items {
		artists = append(artists, item.toModel())
	}
	return artists, nil
}

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*models.Profile, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, "/me", nil, &user); err != nil {
		return nil, err
	}

	profile := &models.Profile{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Country:     user.Country,
		Product:     user.Product,
		ImageURL:    firstImage(user.Images),
		Followers:   user.Followers.Total,
	}
	return profile, nil
}

func topItemsQuery(limit int, timeRange models.TimeRange) (url.Values, error) {
	if limit < 1 || limit > MaxLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d, got %d", shared.ErrInvalidArgument, MaxLimit, limit)
	}
	if !timeRange.Valid() {
		return nil, fmt.Errorf("%w: unknown time range %s", shared.ErrInvalidArgument, timeRange)
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("time_range", timeRange.String())
	return query, nil
}

// doRequest performs an authenticated GET against the Web API, retrying rate-limited and transient failures.
func (s *SpotifyService) doRequest(ctx context.Context, endpoint string, query url.Values, result any) error {
	return retry.Do(
		func() error {
			return s.attempt(ctx, endpoint, query, result)
		},
		retry.Context(ctx),
		retry.Attempts(s.maxRetries),
		retry.LastErrorOnly(true),
		retry.Delay(s.retryDelay),
		retry.MaxDelay(s.maxRetryWait),
		retry.DelayType(s.retryBackoff),
		retry.RetryIf(s.shouldRetry),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Warn("retrying spotify request", "endpoint", endpoint, "attempt", n+1, "error", err)
		}),
	)
}

func (s *SpotifyService) shouldRetry(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) || !apiErr.Retryable() {
		return false
	}
	return apiErr.RetryAfter <= s.maxRetryWait
}

// retryBackoff waits for the provider's Retry-After when given, otherwise backs off exponentially.
func (s *SpotifyService) retryBackoff(n uint, err error, config *retry.Config) time.Duration {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		return apiErr.RetryAfter
	}
	return retry.BackOffDelay(n, err, config)
}

// attempt sends one request. A 401 triggers a single forced token refresh before the failure is reported.
func (s *SpotifyService) attempt(ctx context.Context, endpoint string, query url.Values, result any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	token, err := s.tokens.ValidToken(ctx)
	if err != nil {
		return err
	}

	status, header, body, err := s.send(ctx, token.AccessToken, endpoint, query)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized {
		s.logger.Debug("access token rejected, forcing refresh", "endpoint", endpoint)
		if token, err = s.tokens.Refresh(ctx); err != nil {
			return err
		}
		if status, header, body, err = s.send(ctx, token.AccessToken, endpoint, query); err != nil {
			return err
		}
	}

	if err := classifyResponse(status, header, body, s.now()); err != nil {
		s.logger.Debug("spotify request failed", "endpoint", endpoint, "status", status, "error", err)
		return err
	}

	if result == nil {
		return nil
	}

	if err := json.Unmarshal(body, result); err != nil {
		return &APIError{Kind: shared.ErrUnexpected, Status: status, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

func (s *SpotifyService) send(ctx context.Context, accessToken, endpoint string, query url.Values) (int, http.Header, []byte, error) {
	rctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	apiURL := s.baseURL + endpoint
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(rctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, nil, nil, ctx.Err()
		}
		return 0, nil, nil, &APIError{Kind: shared.ErrTransient, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return 0, nil, nil, ctx.Err()
		}
		return 0, nil, nil, &APIError{Kind: shared.ErrTransient, Status: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	return resp.StatusCode, resp.Header, body, nil
}

// classifyResponse maps a non-2xx response onto the API failure taxonomy.
func classifyResponse(status int, header http.Header, body []byte, now time.Time) error {
	if status >= 200 && status < 300 {
		return nil
	}

	apiErr := &APIError{Status: status, Message: errorMessage(body)}

	switch status {
	case http.StatusUnauthorized:
		apiErr.Kind = shared.ErrUnauthorized
	case http.StatusTooManyRequests:
		apiErr.Kind = shared.ErrRateLimited
		apiErr.RetryAfter = parseRetryAfter(header.Get("Retry-After"), now)
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		apiErr.Kind = shared.ErrTransient
		apiErr.RetryAfter = parseRetryAfter(header.Get("Retry-After"), now)
	default:
		apiErr.Kind = shared.ErrUnexpected
	}

	return apiErr
}

func errorMessage(body []byte) string {
	var payload spotifyErrorBody
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	return strings.TrimSpace(string(body))
}

func (t SpotifyTrack) toModel() models.Track {
	track := models.Track{
		ID:         t.ID,
		Name:       t.Name,
		Artists:    make([]string, 0, len(t.Artists)),
		Album:      t.Album.Name,
		ImageURL:   firstImage(t.Album.Images),
		URL:        t.ExternalURLs.Spotify,
		DurationMS: t.DurationMS,
		Popularity: t.Popularity,
	}

	if t.PreviewURL != nil {
		track.PreviewURL = *t.PreviewURL
	}

	for _, a := range t.Artists {
		track.Artists = append(track.Artists, a.Name)
	}
	return track
}

func (a SpotifyArtist) toModel() models.Artist {
	genres := a.Genres
	if genres == nil {
		genres = []string{}
	}

	return models.Artist{
		ID:         a.ID,
		Name:       a.Name,
		Genres:     genres,
		ImageURL:   firstImage(a.Images),
		URL:        a.ExternalURLs.Spotify,
		Popularity: a.Popularity,
		Followers:  a.Followers.Total,
	}
}

func firstImage(images []SpotifyImage) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}
