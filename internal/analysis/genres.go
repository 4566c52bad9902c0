package analysis

import (
	"slices"

	"github.com/desertthunder/spotstats/internal/models"
)

const (
	// GenreSampleSize is how many top artists the genre view is computed from.
	GenreSampleSize = 50
	// TopGenreCount is the length of the genre list shown to the user.
	TopGenreCount = 10
)

// AggregateGenres returns the [TopGenreCount] most frequent genres across artists.
func AggregateGenres(artists []models.Artist) []models.GenreCount {
	return TopGenres(artists, TopGenreCount)
}

// TopGenres counts every genre tag across artists and returns the n most frequent.
//
// An artist listing the same tag twice counts twice. The result is never nil; n <= 0 returns every genre.
func TopGenres(artists []models.Artist, n int) []models.GenreCount {
	counts := countGenres(artists)

	// SortStableFunc keeps first-seen order among equal counts.
	slices.SortStableFunc(counts, func(a, b models.GenreCount) int {
		return b.Count - a.Count
	})

	if n > 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

func countGenres(artists []models.Artist) []models.GenreCount {
	index := make(map[string]int)
	counts := make([]models.GenreCount, 0)

	for _, artist := range artists {
		for _, genre := range artist.Genres {
			if i, ok := index[genre]; ok {
				counts[i].Count++
				continue
			}
			index[genre] = len(counts)
			counts = append(counts, models.GenreCount{Genre: genre, Count: 1})
		}
	}

	return counts
}

// GenreShare is one genre's fraction of the largest count, used to scale bar charts.
type GenreShare struct {
	models.GenreCount
	Ratio float64 // 1 for the most frequent genre
}

// Shares scales counts against the largest count. counts is assumed sorted as returned by [TopGenres].
func Shares(counts []models.GenreCount) []GenreShare {
	shares := make([]GenreShare, 0, len(counts))
	if len(counts) == 0 {
		return shares
	}

	peak := counts[0].Count
	for _, c := range counts {
		ratio := 0.0
		if peak > 0 {
			ratio = float64(c.Count) / float64(peak)
		}
		shares = append(shares, GenreShare{GenreCount: c, Ratio: ratio})
	}
	return shares
}

// TotalTags returns the number of genre tags across artists, duplicates included.
func TotalTags(artists []models.Artist) int {
	total := 0
	for _, a := range artists {
		total += len(a.Genres)
	}
	return total
}
