package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/spotstats/internal/formatter"
	"github.com/desertthunder/spotstats/internal/models"
)

var (
	_ list.Item = trackItem{}
	_ list.Item = artistItem{}
)

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	rank  int
	track models.Track
}

func (i trackItem) FilterValue() string { return i.track.Name }
func (i trackItem) Title() string       { return fmt.Sprintf("%d. %s", i.rank, i.track.Name) }
func (i trackItem) Description() string {
	desc := i.track.PrimaryArtist()
	if i.track.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Album)
	}
	return fmt.Sprintf("%s • %s", desc, formatter.FormatDuration(i.track.DurationMS))
}

// artistItem wraps [models.Artist] to implement [list.Item].
type artistItem struct {
	rank   int
	artist models.Artist
}

func (i artistItem) FilterValue() string { return i.artist.Name }
func (i artistItem) Title() string       { return fmt.Sprintf("%d. %s", i.rank, i.artist.Name) }
func (i artistItem) Description() string {
	if len(i.artist.Genres) == 0 {
		return "no genres"
	}
	return strings.Join(i.artist.Genres, ", ")
}

func trackItems(tracks []models.Track) []list.Item {
	items := make([]list.Item, len(tracks))
	for i, t := range tracks {
		items[i] = trackItem{rank: i + 1, track: t}
	}
	return items
}

func artistItems(artists []models.Artist) []list.Item {
	items := make([]list.Item, len(artists))
	for i, a := range artists {
		items[i] = artistItem{rank: i + 1, artist: a}
	}
	return items
}
