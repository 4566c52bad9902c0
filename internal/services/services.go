package services

import (
	"context"

	"github.com/desertthunder/spotstats/internal/models"
)

// TokenStore persists the current token. See the repositories package for implementations.
type TokenStore interface {
	// Load returns [shared.ErrNoToken] when nothing is stored.
	Load(ctx context.Context) (models.Token, error)
	Save(ctx context.Context, token models.Token) error
	Clear(ctx context.Context) error
}

// TokenProvider hands out usable access tokens. [OAuthClient] is the production implementation.
type TokenProvider interface {
	ValidToken(ctx context.Context) (models.Token, error)
	// Refresh forces a new access token, e.g. after the API rejected the current one.
	Refresh(ctx context.Context) (models.Token, error)
}

// StatsService reads listening statistics for the authenticated user.
//
// The CLI, TUI and web dashboard depend on this interface rather than on [SpotifyService] directly.
type StatsService interface {
	TopTracks(ctx context.Context, limit int, timeRange models.TimeRange) ([]models.Track, error)
	TopArtists(ctx context.Context, limit int, timeRange models.TimeRange) ([]models.Artist, error)
	UserProfile(ctx context.Context) (*models.Profile, error)
}

var (
	_ TokenProvider = (*OAuthClient)(nil)
	_ StatsService  = (*SpotifyService)(nil)
)
