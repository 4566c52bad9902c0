package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/spotstats/internal/analysis"
	"github.com/desertthunder/spotstats/internal/formatter"
	"github.com/desertthunder/spotstats/internal/models"
	"github.com/desertthunder/spotstats/internal/services"
	"github.com/desertthunder/spotstats/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	TracksView ViewState = iota
	ArtistsView
	GenresView
)

var viewTitles = []string{"Top Tracks", "Top Artists", "Top Genres"}

func (v ViewState) String() string {
	if v < TracksView || v > GenresView {
		return fmt.Sprintf("ViewState(%d)", int(v))
	}
	return viewTitles[v]
}

const (
	// ListLimit is how many tracks and artists the dashboard shows.
	ListLimit = 10
	barWidth  = 30
)

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	stats      services.StatsService
	view       ViewState
	timeRange  models.TimeRange
	theme      Theme
	palette    *Palette
	width      int
	height     int
	trackList  list.Model
	artistList list.Model
	genres     []models.GenreCount
	profile    *models.Profile
	loaded     map[ViewState]bool
	loading    map[ViewState]bool
	err        error
	help       help.Model
	keys       keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, stats services.StatsService, timeRange models.TimeRange, theme Theme) *Model {
	palette := NewPalette(theme)

	m := &Model{
		ctx:        ctx,
		stats:      stats,
		view:       TracksView,
		timeRange:  timeRange,
		theme:      theme,
		palette:    palette,
		trackList:  newList(palette),
		artistList: newList(palette),
		loaded:     map[ViewState]bool{},
		loading:    map[ViewState]bool{},
		help:       help.New(),
		keys:       newKeyMap(),
	}
	return m
}

func newList(p *Palette) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.NoItems = p.help
	return l
}

// Init fetches the profile and the first view.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchProfile(), m.fetch(m.view))
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.trackList.SetSize(msg.Width-4, msg.Height-8)
		m.artistList.SetSize(msg.Width-4, msg.Height-8)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case Msg:
		return m.handleFetched(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.tracks):
		return m, m.show(TracksView)
	case key.Matches(msg, m.keys.artists):
		return m, m.show(ArtistsView)
	case key.Matches(msg, m.keys.genres):
		return m, m.show(GenresView)
	case key.Matches(msg, m.keys.next):
		return m, m.show((m.view + 1) % ViewState(len(viewTitles)))
	case key.Matches(msg, m.keys.timeRange):
		m.timeRange = m.timeRange.Next()
		m.loaded = map[ViewState]bool{}
		m.loading = map[ViewState]bool{}
		m.err = nil
		return m, m.fetch(m.view)
	case key.Matches(msg, m.keys.refresh):
		m.err = nil
		return m, m.fetch(m.view)
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	return m.updateLists(msg)
}

// show switches views, fetching the view's data on first visit for the current time range.
func (m *Model) show(v ViewState) tea.Cmd {
	m.view = v
	m.err = nil
	if m.loaded[v] || m.loading[v] {
		return nil
	}
	return m.fetch(v)
}

func (m *Model) handleFetched(msg Msg) (tea.Model, tea.Cmd) {
	res, ok := msg.data.(fetchResult)
	if !ok {
		return m, nil
	}

	if msg.kind == MsgProfileFetched {
		if res.err == nil {
			m.profile = res.profile
		}
		return m, nil
	}

	if res.timeRange != m.timeRange {
		return m, nil
	}

	var v ViewState
	switch msg.kind {
	case MsgTracksFetched:
		v = TracksView
	case MsgArtistsFetched:
		v = ArtistsView
	case MsgGenresFetched:
		v = GenresView
	default:
		return m, nil
	}

	m.loading[v] = false
	if res.err != nil {
		if v == m.view {
			m.err = res.err
		}
		return m, nil
	}

	m.loaded[v] = true
	switch v {
	case TracksView:
		cmd := m.trackList.SetItems(trackItems(res.tracks))
		m.trackList.ResetSelected()
		return m, cmd
	case ArtistsView:
		cmd := m.artistList.SetItems(artistItems(res.artists))
		m.artistList.ResetSelected()
		return m, cmd
	default:
		m.genres = res.genres
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case TracksView:
		m.trackList, cmd = m.trackList.Update(msg)
	case ArtistsView:
		m.artistList, cmd = m.artistList.Update(msg)
	}
	return m, cmd
}

// fetch returns a command that loads v for the current time range off the UI goroutine.
func (m *Model) fetch(v ViewState) tea.Cmd {
	m.loading[v] = true
	ctx, stats, r := m.ctx, m.stats, m.timeRange

	switch v {
	case TracksView:
		return func() tea.Msg {
			tracks, err := stats.TopTracks(ctx, ListLimit, r)
			return tracksFetchedMsg(r, tracks, err)
		}
	case ArtistsView:
		return func() tea.Msg {
			artists, err := stats.TopArtists(ctx, ListLimit, r)
			return artistsFetchedMsg(r, artists, err)
		}
	default:
		return func() tea.Msg {
			artists, err := stats.TopArtists(ctx, analysis.GenreSampleSize, r)
			if err != nil {
				return genresFetchedMsg(r, nil, err)
			}
			return genresFetchedMsg(r, analysis.AggregateGenres(artists), nil)
		}
	}
}

func (m *Model) fetchProfile() tea.Cmd {
	ctx, stats := m.ctx, m.stats
	return func() tea.Msg {
		profile, err := stats.UserProfile(ctx)
		return profileFetchedMsg(profile, err)
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(m.renderError())
	case m.loading[m.view] && !m.loaded[m.view]:
		b.WriteString(m.palette.help.Render(fmt.Sprintf("Loading %s…", strings.ToLower(m.view.String()))))
	case m.view == TracksView:
		b.WriteString(m.trackList.View())
	case m.view == ArtistsView:
		b.WriteString(m.artistList.View())
	case m.view == GenresView:
		b.WriteString(m.renderGenres())
	}

	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderHeader() string {
	title := "Spotify Stats"
	if m.profile != nil && m.profile.DisplayName != "" {
		title = fmt.Sprintf("Spotify Stats • %s", m.profile.DisplayName)
	}

	tabs := make([]string, len(viewTitles))
	for i, name := range viewTitles {
		if ViewState(i) == m.view {
			tabs[i] = m.palette.activeTab.Render(name)
		} else {
			tabs[i] = m.palette.tab.Render(name)
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.palette.title.Render(title),
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...)+"  "+m.palette.warn.Render(m.timeRange.Label()),
	)
}

func (m *Model) renderGenres() string {
	if len(m.genres) == 0 {
		return m.palette.help.Render(formatter.NoGenres)
	}

	labels := make([]string, len(m.genres))
	width := 0
	for i, g := range m.genres {
		labels[i] = formatter.GenreTitle(g.Genre)
		width = max(width, lipgloss.Width(labels[i]))
	}

	var b strings.Builder
	for i, share := range analysis.Shares(m.genres) {
		bar := strings.Repeat("█", max(1, int(share.Ratio*barWidth)))
		fmt.Fprintf(&b, "%2d. %-*s %s %d\n", i+1, width, labels[i], m.palette.bar.Render(bar), share.Count)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderError() string {
	return m.palette.err.Render(ErrorHint(m.err))
}

// ErrorHint turns a failure into the message the user should act on.
func ErrorHint(err error) string {
	switch {
	case errors.Is(err, shared.ErrMissingConfig):
		return fmt.Sprintf("Configuration error: %v\nRun `spotstats setup` and fill in your Spotify credentials.", err)
	case services.NeedsLogin(err):
		return "Your Spotify session has expired.\nRun `spotstats auth login` to sign in again."
	case errors.Is(err, shared.ErrRateLimited), errors.Is(err, shared.ErrTransient):
		return fmt.Sprintf("Spotify is unavailable right now (%v).\nPress r to retry.", err)
	default:
		return fmt.Sprintf("Error: %v\nPress r to retry, q to quit.", err)
	}
}
