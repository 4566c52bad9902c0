package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotstats/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgTracksFetched MsgKind = iota
	MsgArtistsFetched
	MsgGenresFetched
	MsgProfileFetched
)

// fetchResult is the payload of every fetch message.
//
// timeRange records what was requested so results for a range the user has since left are dropped.
type fetchResult struct {
	timeRange models.TimeRange
	tracks    []models.Track
	artists   []models.Artist
	genres    []models.GenreCount
	profile   *models.Profile
	err       error
}

// tracksFetchedMsg is the constructor for [MsgTracksFetched]
func tracksFetchedMsg(r models.TimeRange, tracks []models.Track, err error) Msg {
	return Msg{kind: MsgTracksFetched, data: fetchResult{timeRange: r, tracks: tracks, err: err}}
}

// artistsFetchedMsg is the constructor for [MsgArtistsFetched]
func artistsFetchedMsg(r models.TimeRange, artists []models.Artist, err error) Msg {
	return Msg{kind: MsgArtistsFetched, data: fetchResult{timeRange: r, artists: artists, err: err}}
}

// genresFetchedMsg is the constructor for [MsgGenresFetched]
func genresFetchedMsg(r models.TimeRange, genres []models.GenreCount, err error) Msg {
	return Msg{kind: MsgGenresFetched, data: fetchResult{timeRange: r, genres: genres, err: err}}
}

// profileFetchedMsg is the constructor for [MsgProfileFetched]
func profileFetchedMsg(profile *models.Profile, err error) Msg {
	return Msg{kind: MsgProfileFetched, data: fetchResult{profile: profile, err: err}}
}
