package models

import (
	"fmt"
	"strings"
	"time"
)

// Token is the OAuth credential for the single logged-in account.
type Token struct {
	AccessToken  string    `json:"access_token" toml:"access_token"`
	RefreshToken string    `json:"refresh_token" toml:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at" toml:"expires_at"`
	Scope        string    `json:"scope" toml:"scope"`
}

// Expired reports whether the token can no longer be used at now.
// A token is valid strictly before ExpiresAt.
func (t Token) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// CanRefresh reports whether a refresh round-trip can be attempted.
func (t Token) CanRefresh() bool {
	return t.RefreshToken != ""
}

// IsZero reports whether no access token is present.
func (t Token) IsZero() bool {
	return t.AccessToken == ""
}

// AuthState is the position of the session in the authorization-code flow.
type AuthState int

const (
	Unauthenticated AuthState = iota
	AwaitingCallback
	Authenticated
)

func (s AuthState) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case AwaitingCallback:
		return "awaiting_callback"
	case Authenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("AuthState(%d)", int(s))
	}
}

// TimeRange is the window over which the provider computes top statistics.
type TimeRange int

const (
	ShortTerm TimeRange = iota
	MediumTerm
	LongTerm
)

// TimeRanges lists every range in display order.
var TimeRanges = []TimeRange{ShortTerm, MediumTerm, LongTerm}

// String returns the provider's query token for the range.
func (r TimeRange) String() string {
	switch r {
	case ShortTerm:
		return "short_term"
	case MediumTerm:
		return "medium_term"
	case LongTerm:
		return "long_term"
	default:
		return fmt.Sprintf("TimeRange(%d)", int(r))
	}
}

// Label returns the human readable name of the range.
func (r TimeRange) Label() string {
	switch r {
	case ShortTerm:
		return "Last 4 Weeks"
	case MediumTerm:
		return "Last 6 Months"
	case LongTerm:
		return "All Time"
	default:
		return r.String()
	}
}

// Valid reports whether r is one of the known ranges.
func (r TimeRange) Valid() bool {
	return r >= ShortTerm && r <= LongTerm
}

// Next cycles to the following range, wrapping around.
func (r TimeRange) Next() TimeRange {
	return TimeRange((int(r) + 1) % len(TimeRanges))
}

// ParseTimeRange accepts the provider tokens, their short forms, and display labels.
func ParseTimeRange(s string) (TimeRange, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "short_term", "short", "4w", "last 4 weeks":
		return ShortTerm, nil
	case "medium_term", "medium", "6m", "last 6 months", "":
		return MediumTerm, nil
	case "long_term", "long", "all", "all time":
		return LongTerm, nil
	default:
		return MediumTerm, fmt.Errorf("unknown time range %q (use short, medium or long)", s)
	}
}

// Track is a top track as returned by the provider.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []string `json:"artists"`
	Album      string   `json:"album"`
	ImageURL   string   `json:"image_url,omitempty"`
	PreviewURL string   `json:"preview_url,omitempty"`
	URL        string   `json:"url,omitempty"`
	DurationMS int      `json:"duration_ms"`
	Popularity int      `json:"popularity"`
}

// PrimaryArtist returns the first credited artist, or an empty string.
func (t Track) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}

// Artist is a top artist as returned by the provider. Genres keep the provider's order.
type Artist struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Genres     []string `json:"genres"`
	ImageURL   string   `json:"image_url,omitempty"`
	URL        string   `json:"url,omitempty"`
	Popularity int      `json:"popularity"`
	Followers  int      `json:"followers"`
}

// GenreCount is the number of artists tagged with Genre.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// Profile is the authenticated user's account.
type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
	Country     string `json:"country,omitempty"`
	Product     string `json:"product,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	Followers   int    `json:"followers"`
}
