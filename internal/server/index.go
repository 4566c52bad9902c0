package server

import (
	"bytes"
	"context"
	"net/http"

	"github.com/desertthunder/spotstats/internal/analysis"
	"github.com/desertthunder/spotstats/internal/models"
	"github.com/desertthunder/spotstats/internal/services"
	"github.com/desertthunder/spotstats/internal/ui"
	"golang.org/x/sync/errgroup"
)

type option struct {
	Value    string
	Label    string
	Selected bool
}

type indexPage struct {
	Theme         ui.Theme
	Themes        []option
	Views         []option
	Ranges        []option
	View          string
	RangeLabel    string
	RangeQuery    string
	Authenticated bool
	NeedsLogin    bool
	Error         string
	Profile       *models.Profile
	Tracks        []models.Track
	Artists       []models.Artist
	Genres        []analysis.GenreShare
}

var pageViews = []option{
	{Value: "tracks", Label: "Top Tracks"},
	{Value: "artists", Label: "Top Artists"},
	{Value: "genres", Label: "Top Genres"},
}

// index renders the dashboard for ?view=tracks|artists|genres, ?range= and ?theme=.
func (d *Dashboard) index(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	themeName := q.Get("theme")
	if themeName == "" {
		themeName = d.theme
	}
	theme, _ := ui.ThemeByName(themeName)

	view := q.Get("view")
	if view != "artists" && view != "genres" {
		view = "tracks"
	}

	timeRange, err := models.ParseTimeRange(q.Get("range"))
	if err != nil {
		timeRange = models.MediumTerm
	}

	page := indexPage{
		Theme:         theme,
		View:          view,
		RangeLabel:    timeRange.Label(),
		RangeQuery:    timeRange.String(),
		Authenticated: d.auth.State() == models.Authenticated,
	}
	for _, name := range ui.ThemeNames() {
		page.Themes = append(page.Themes, option{Value: name, Label: name, Selected: name == theme.Name})
	}
	for _, v := range pageViews {
		v.Selected = v.Value == view
		page.Views = append(page.Views, v)
	}
	for _, tr := range models.TimeRanges {
		page.Ranges = append(page.Ranges, option{Value: tr.String(), Label: tr.Label(), Selected: tr == timeRange})
	}

	if page.Authenticated {
		if err := d.load(r.Context(), &page, timeRange); err != nil {
			d.logger.Warn("dashboard load failed", "view", view, "kind", services.ErrorKind(err), "error", err)
			page.Error = ui.ErrorHint(err)
			page.NeedsLogin = services.NeedsLogin(err)
			page.Authenticated = d.auth.State() == models.Authenticated
		}
	}

	var buf bytes.Buffer
	if err := d.tmpl.Execute(&buf, page); err != nil {
		d.logger.Error("failed to render dashboard", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// load fetches the profile and the selected view concurrently.
func (d *Dashboard) load(ctx context.Context, page *indexPage, timeRange models.TimeRange) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		profile, err := d.stats.UserProfile(ctx)
		page.Profile = profile
		return err
	})

	g.Go(func() error {
		var err error
		switch page.View {
		case "artists":
			page.Artists, err = d.stats.TopArtists(ctx, DefaultListLimit, timeRange)
		case "genres":
			var genres []models.GenreCount
			genres, err = d.genres(ctx, timeRange, analysis.TopGenreCount)
			page.Genres = analysis.Shares(genres)
		default:
			page.Tracks, err = d.stats.TopTracks(ctx, DefaultListLimit, timeRange)
		}
		return err
	})

	return g.Wait()
}
