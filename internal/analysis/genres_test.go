package analysis

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/desertthunder/spotstats/internal/models"
)

func artists(genres ...[]string) []models.Artist {
	out := make([]models.Artist, 0, len(genres))
	for i, g := range genres {
		out = append(out, models.Artist{ID: fmt.Sprintf("a%d", i), Name: fmt.Sprintf("Artist %d", i), Genres: g})
	}
	return out
}

func TestAggregateGenres(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		got := AggregateGenres(nil)
		if got == nil || len(got) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", got)
		}
	})

	t.Run("artists without genres", func(t *testing.T) {
		got := AggregateGenres(artists([]string{}, nil))
		if len(got) != 0 {
			t.Errorf("expected no genres, got %v", got)
		}
	})

	t.Run("counts and orders", func(t *testing.T) {
		got := AggregateGenres(artists([]string{"pop", "rock"}, []string{"pop"}))
		want := []models.GenreCount{{Genre: "pop", Count: 2}, {Genre: "rock", Count: 1}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("ties keep first-seen order", func(t *testing.T) {
		got := AggregateGenres(artists(
			[]string{"shoegaze", "dream pop"},
			[]string{"indie", "dream pop"},
			[]string{"shoegaze", "indie", "jazz"},
		))
		want := []models.GenreCount{
			{Genre: "shoegaze", Count: 2},
			{Genre: "dream pop", Count: 2},
			{Genre: "indie", Count: 2},
			{Genre: "jazz", Count: 1},
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("case-sensitive tags", func(t *testing.T) {
		got := AggregateGenres(artists([]string{"Pop"}, []string{"pop"}, []string{"pop"}))
		want := []models.GenreCount{{Genre: "pop", Count: 2}, {Genre: "Pop", Count: 1}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("truncates to ten", func(t *testing.T) {
		var in [][]string
		for i := range 50 {
			in = append(in, []string{fmt.Sprintf("genre-%02d", i)})
		}

		got := AggregateGenres(artists(in...))
		if len(got) != TopGenreCount {
			t.Fatalf("expected %d genres, got %d", TopGenreCount, len(got))
		}
		for i, g := range got {
			if want := fmt.Sprintf("genre-%02d", i); g.Genre != want || g.Count != 1 {
				t.Errorf("position %d: got %v, want %s x1", i, g, want)
			}
		}
	})

	t.Run("frequent late genre ranks first", func(t *testing.T) {
		got := AggregateGenres(artists([]string{"a"}, []string{"b", "c"}, []string{"c"}, []string{"c"}))
		if got[0].Genre != "c" || got[0].Count != 3 {
			t.Errorf("expected c first, got %v", got)
		}
	})
}

func TestTopGenres(t *testing.T) {
	in := artists([]string{"a", "b", "c"}, []string{"c"})

	if got := TopGenres(in, 2); len(got) != 2 || got[0].Genre != "c" {
		t.Errorf("expected top 2 led by c, got %v", got)
	}
	if got := TopGenres(in, 0); len(got) != 3 {
		t.Errorf("expected all genres for n <= 0, got %v", got)
	}
}

func TestShares(t *testing.T) {
	shares := Shares([]models.GenreCount{{Genre: "pop", Count: 4}, {Genre: "rock", Count: 1}})
	if shares[0].Ratio != 1 || shares[1].Ratio != 0.25 {
		t.Errorf("unexpected ratios: %v", shares)
	}
	if got := Shares(nil); got == nil || len(got) != 0 {
		t.Errorf("expected empty shares, got %#v", got)
	}
	if got := TotalTags(artists([]string{"a", "b"}, []string{"a"})); got != 3 {
		t.Errorf("expected 3 tags, got %d", got)
	}
}
