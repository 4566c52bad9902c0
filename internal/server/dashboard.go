package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotstats/internal/analysis"
	"github.com/desertthunder/spotstats/internal/formatter"
	"github.com/desertthunder/spotstats/internal/models"
	"github.com/desertthunder/spotstats/internal/services"
	"github.com/desertthunder/spotstats/internal/shared"
)

//go:embed templates/*.html
var templateFS embed.FS

// DefaultListLimit is used when a request omits limit.
const DefaultListLimit = 10

// Authenticator is the session surface the dashboard drives.
type Authenticator interface {
	LoginCompleter
	BeginLogin() (string, error)
	Logout(ctx context.Context) error
	State() models.AuthState
	Current() (models.Token, bool)
}

// DashboardOptions configures a [Dashboard].
type DashboardOptions struct {
	Auth   Authenticator
	Stats  services.StatsService
	Theme  string // default theme, overridable per request with ?theme=
	Logger *log.Logger

	// CallbackPath is the redirect URI's path, see [CallbackPath].
	CallbackPath string
}

// Dashboard serves the listening statistics as JSON and as a themed HTML page.
type Dashboard struct {
	auth     Authenticator
	stats    services.StatsService
	theme    string
	callback string
	logger   *log.Logger
	tmpl     *template.Template
}

// NewDashboard creates a [Dashboard]. Auth and Stats are required.
func NewDashboard(opts DashboardOptions) (*Dashboard, error) {
	if opts.Auth == nil || opts.Stats == nil {
		return nil, errors.New("dashboard requires an authenticator and a stats service")
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}

	tmpl, err := template.New("index.html").Funcs(template.FuncMap{
		"title":    formatter.GenreTitle,
		"duration": formatter.FormatDuration,
		"join":     strings.Join,
		"percent":  func(r float64) int { return int(r * 100) },
		"inc":      func(i int) int { return i + 1 },
	}).ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		auth:     opts.Auth,
		stats:    opts.Stats,
		theme:    opts.Theme,
		callback: CallbackPath(opts.CallbackPath),
		logger:   opts.Logger,
		tmpl:     tmpl,
	}, nil
}

// Register adds every dashboard route to r.
func (d *Dashboard) Register(r Router) {
	r.Handle(http.MethodGet, "/{$}", http.HandlerFunc(d.index))
	r.Handle(http.MethodGet, "/login", http.HandlerFunc(d.login))
	r.Handle(http.MethodGet, d.callback, http.HandlerFunc(d.completeLogin))
	r.Handle(http.MethodPost, "/logout", http.HandlerFunc(d.logout))
	r.Handle(http.MethodGet, "/api/status", http.HandlerFunc(d.status))
	r.Handle(http.MethodGet, "/api/me", http.HandlerFunc(d.me))
	r.Handle(http.MethodGet, "/api/top/tracks", http.HandlerFunc(d.topTracks))
	r.Handle(http.MethodGet, "/api/top/artists", http.HandlerFunc(d.topArtists))
	r.Handle(http.MethodGet, "/api/top/genres", http.HandlerFunc(d.topGenres))
}

// NewRouter returns a router serving d behind the recover and logging middleware.
func NewRouter(d *Dashboard, logger *log.Logger) *BasicRouter {
	r := NewBasicRouter()
	r.Use(Recover(logger), Logging(logger))
	d.Register(r)
	return r
}

// NewHandler is [NewRouter] wrapped in [CORS] when allowedOrigins is not empty.
func NewHandler(d *Dashboard, logger *log.Logger, allowedOrigins []string) http.Handler {
	router := NewRouter(d, logger)
	if len(allowedOrigins) == 0 {
		return router
	}
	return CORS(allowedOrigins)(router)
}

func (d *Dashboard) login(w http.ResponseWriter, r *http.Request) {
	authURL, err := d.auth.BeginLogin()
	if err != nil {
		d.writeError(w, err)
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

func (d *Dashboard) completeLogin(w http.ResponseWriter, r *http.Request) {
	if _, err := d.auth.CompleteLogin(r.Context(), r.URL.String()); err != nil {
		d.logger.Warn("login failed", "kind", services.ErrorKind(err), "error", err)
		renderCallbackPage(w, statusFor(err), callbackPage{
			Title:   "Authorization Failed",
			Message: err.Error(),
			Color:   "#e22134",
		})
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (d *Dashboard) logout(w http.ResponseWriter, r *http.Request) {
	if err := d.auth.Logout(r.Context()); err != nil {
		d.writeError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type statusResponse struct {
	State     string `json:"state"`
	ExpiresAt string `json:"expires_at,omitempty"`
	Scope     string `json:"scope,omitempty"`
}

func (d *Dashboard) status(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{State: d.auth.State().String()}
	if tok, ok := d.auth.Current(); ok {
		resp.ExpiresAt = tok.ExpiresAt.UTC().Format(time.RFC3339)
		resp.Scope = tok.Scope
	}
	writeJSON(w, http.StatusOK, resp)
}

func (d *Dashboard) me(w http.ResponseWriter, r *http.Request) {
	profile, err := d.stats.UserProfile(r.Context())
	if err != nil {
		d.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (d *Dashboard) topTracks(w http.ResponseWriter, r *http.Request) {
	limit, timeRange, err := topParams(r, DefaultListLimit)
	if err != nil {
		d.writeError(w, err)
		return
	}

	tracks, err := d.stats.TopTracks(r.Context(), limit, timeRange)
	if err != nil {
		d.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tracks)
}

func (d *Dashboard) topArtists(w http.ResponseWriter, r *http.Request) {
	limit, timeRange, err := topParams(r, DefaultListLimit)
	if err != nil {
		d.writeError(w, err)
		return
	}

	artists, err := d.stats.TopArtists(r.Context(), limit, timeRange)
	if err != nil {
		d.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, artists)
}

// topGenres aggregates the genres of the top [analysis.GenreSampleSize] artists.
// limit shortens the list but never extends it past [analysis.TopGenreCount].
func (d *Dashboard) topGenres(w http.ResponseWriter, r *http.Request) {
	limit, timeRange, err := topParams(r, analysis.TopGenreCount)
	if err != nil {
		d.writeError(w, err)
		return
	}

	if limit < 1 {
		d.writeError(w, fmt.Errorf("%w: limit must be at least 1", shared.ErrInvalidArgument))
		return
	}

	genres, err := d.genres(r.Context(), timeRange, limit)
	if err != nil {
		d.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, genres)
}

func (d *Dashboard) genres(ctx context.Context, timeRange models.TimeRange, n int) ([]models.GenreCount, error) {
	artists, err := d.stats.TopArtists(ctx, analysis.GenreSampleSize, timeRange)
	if err != nil {
		return nil, err
	}
	return analysis.TopGenres(artists, min(n, analysis.TopGenreCount)), nil
}

// topParams reads limit and range from the query, using fallback for a missing limit.
func topParams(r *http.Request, fallback int) (int, models.TimeRange, error) {
	q := r.URL.Query()

	limit := fallback
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: limit must be an integer, got %q", shared.ErrInvalidArgument, raw)
		}
		limit = n
	}

	timeRange, err := models.ParseTimeRange(q.Get("range"))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	return limit, timeRange, nil
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (d *Dashboard) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		d.logger.Error("request failed", "kind", services.ErrorKind(err), "error", err)
	}

	var apiErr *services.APIError
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(apiErr.RetryAfter.Seconds())))
	}

	writeJSON(w, status, errorResponse{Error: services.ErrorKind(err), Message: err.Error()})
}

// statusFor maps an error kind to the HTTP status the dashboard answers with.
func statusFor(err error) int {
	switch services.ErrorKind(err) {
	case "not_authenticated", "session_expired", "unauthorized":
		return http.StatusUnauthorized
	case "rate_limited":
		return http.StatusTooManyRequests
	case "transient":
		return http.StatusServiceUnavailable
	case "invalid_argument", "malformed_callback":
		return http.StatusBadRequest
	case "exchange_rejected", "unexpected":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	body, err := shared.MarshalJSON(data, false)
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}
