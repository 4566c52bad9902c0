package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotstats/internal/analysis"
	"github.com/desertthunder/spotstats/internal/formatter"
	"github.com/desertthunder/spotstats/internal/models"
	"github.com/desertthunder/spotstats/internal/shared"
	"github.com/urfave/cli/v3"
)

type topArgs struct {
	limit     int
	timeRange models.TimeRange
	format    formatter.Format
}

// parseTopArgs validates --limit, --range and --format before any request is made.
func parseTopArgs(cmd *cli.Command) (topArgs, error) {
	timeRange, err := models.ParseTimeRange(cmd.String("range"))
	if err != nil {
		return topArgs{}, fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return topArgs{}, err
	}

	return topArgs{limit: cmd.Int("limit"), timeRange: timeRange, format: format}, nil
}

// TopTracks prints the user's top tracks.
func (r *Runner) TopTracks(ctx context.Context, cmd *cli.Command) error {
	args, err := parseTopArgs(cmd)
	if err != nil {
		return err
	}
	if err := r.connect(ctx); err != nil {
		return err
	}

	r.logger.Debug("fetching top tracks", "limit", args.limit, "range", args.timeRange)

	tracks, err := r.stats.TopTracks(ctx, args.limit, args.timeRange)
	if err != nil {
		return err
	}

	r.header(args, "Top Tracks")
	return formatter.WriteTracks(r.output, tracks, args.format)
}

// TopArtists prints the user's top artists.
func (r *Runner) TopArtists(ctx context.Context, cmd *cli.Command) error {
	args, err := parseTopArgs(cmd)
	if err != nil {
		return err
	}
	if err := r.connect(ctx); err != nil {
		return err
	}

	r.logger.Debug("fetching top artists", "limit", args.limit, "range", args.timeRange)

	artists, err := r.stats.TopArtists(ctx, args.limit, args.timeRange)
	if err != nil {
		return err
	}

	r.header(args, "Top Artists")
	return formatter.WriteArtists(r.output, artists, args.format)
}

// TopGenres prints the most common genres among the user's top artists; --limit caps the genre list.
func (r *Runner) TopGenres(ctx context.Context, cmd *cli.Command) error {
	args, err := parseTopArgs(cmd)
	if err != nil {
		return err
	}
	if args.limit < 1 {
		return fmt.Errorf("%w: --limit must be at least 1", shared.ErrInvalidFlag)
	}
	if err := r.connect(ctx); err != nil {
		return err
	}

	r.logger.Debug("fetching artists for genres", "sample", analysis.GenreSampleSize, "range", args.timeRange)

	artists, err := r.stats.TopArtists(ctx, analysis.GenreSampleSize, args.timeRange)
	if err != nil {
		return err
	}

	genres := analysis.TopGenres(artists, min(args.limit, analysis.TopGenreCount))
	r.logger.Debug("aggregated genres", "artists", len(artists), "tags", analysis.TotalTags(artists), "genres", len(genres))

	r.header(args, "Top Genres")
	return formatter.WriteGenres(r.output, genres, args.format)
}

// header prints a title above table output only, so machine-readable formats stay parseable.
func (r *Runner) header(args topArgs, title string) {
	if args.format == formatter.Table {
		r.writePlain("%s · %s\n", title, args.timeRange.Label())
	}
}
