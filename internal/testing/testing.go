// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/spotstats/internal/models"
)

// FakeTokens is a test double for [services.TokenProvider].
type FakeTokens struct {
	mu         sync.Mutex
	Token      models.Token
	Err        error
	RefreshErr error
	Refreshed  models.Token // returned by Refresh, defaults to Token with a new access token
	Refreshes  int
}

func NewFakeTokens(accessToken string) *FakeTokens {
	return &FakeTokens{Token: models.Token{
		AccessToken:  accessToken,
		RefreshToken: "refresh-" + accessToken,
		ExpiresAt:    time.Now().Add(time.Hour),
		Scope:        "user-top-read",
	}}
}

func (f *FakeTokens) ValidToken(ctx context.Context) (models.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return models.Token{}, f.Err
	}
	return f.Token, nil
}

func (f *FakeTokens) Refresh(ctx context.Context) (models.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Refreshes++
	if f.RefreshErr != nil {
		return models.Token{}, f.RefreshErr
	}
	if f.Refreshed.IsZero() {
		f.Token.AccessToken += "-refreshed"
	} else {
		f.Token = f.Refreshed
	}
	return f.Token, nil
}

// FakeStats is a test double for [services.StatsService] that records the last request.
type FakeStats struct {
	mu         sync.Mutex
	Tracks     []models.Track
	Artists    []models.Artist
	Profile    *models.Profile
	Err        error
	LastLimit  int
	LastRange  models.TimeRange
	ArtistHits int
}

func (f *FakeStats) TopTracks(ctx context.Context, limit int, timeRange models.TimeRange) ([]models.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastLimit, f.LastRange = limit, timeRange
	if f.Err != nil {
		return nil, f.Err
	}
	return head(f.Tracks, limit), nil
}

func (f *FakeStats) TopArtists(ctx context.Context, limit int, timeRange models.TimeRange) ([]models.Artist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastLimit, f.LastRange = limit, timeRange
	f.ArtistHits++
	if f.Err != nil {
		return nil, f.Err
	}
	return head(f.Artists, limit), nil
}

func (f *FakeStats) UserProfile(ctx context.Context) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Profile, nil
}

// FakeAuth is a test double for the dashboard's session surface.
type FakeAuth struct {
	mu          sync.Mutex
	AuthState   models.AuthState
	Token       models.Token
	LoginURL    string
	LoginErr    error
	CompleteErr error
	LastURL     string
	Logouts     int
}

func (f *FakeAuth) BeginLogin() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.LoginErr != nil {
		return "", f.LoginErr
	}
	f.AuthState = models.AwaitingCallback
	return f.LoginURL, nil
}

func (f *FakeAuth) CompleteLogin(ctx context.Context, callbackURL string) (models.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastURL = callbackURL
	if f.CompleteErr != nil {
		return models.Token{}, f.CompleteErr
	}
	f.AuthState = models.Authenticated
	return f.Token, nil
}

// Exchange behaves like CompleteLogin; the paste flow does not require a pending login.
func (f *FakeAuth) Exchange(ctx context.Context, input string) (models.Token, error) {
	return f.CompleteLogin(ctx, input)
}

func (f *FakeAuth) Logout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Logouts++
	f.AuthState = models.Unauthenticated
	f.Token = models.Token{}
	return nil
}

func (f *FakeAuth) State() models.AuthState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.AuthState
}

func (f *FakeAuth) Current() (models.Token, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Token, !f.Token.IsZero()
}

// DistinctGenreArtists returns n artists that each carry one unique genre.
func DistinctGenreArtists(n int) []models.Artist {
	artists := make([]models.Artist, n)
	for i := range artists {
		id := strconv.Itoa(i + 1)
		artists[i] = models.Artist{ID: "a" + id, Name: "Artist " + id, Genres: []string{"genre " + id}}
	}
	return artists
}

func head[T any](items []T, n int) []T {
	if n >= 0 && n < len(items) {
		return items[:n]
	}
	return items
}

// CountingServer wraps handler in an [httptest.Server] and counts the requests it receives.
type CountingServer struct {
	*httptest.Server
	hits atomic.Int64
}

func NewCountingServer(t *testing.T, handler http.HandlerFunc) *CountingServer {
	t.Helper()
	cs := &CountingServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(cs.Close)
	return cs
}

// Hits returns the number of requests served so far.
func (cs *CountingServer) Hits() int {
	return int(cs.hits.Load())
}

// Clock is a settable time source for expiry tests.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
