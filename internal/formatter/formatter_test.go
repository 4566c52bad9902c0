package formatter

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/spotstats/internal/models"
	"github.com/desertthunder/spotstats/internal/shared"
	th "github.com/desertthunder/spotstats/internal/testing"
)

var (
	tracks = []models.Track{
		{ID: "t1", Name: "Song One", Artists: []string{"Artist One", "Guest"}, Album: "Album One", DurationMS: 180000, PreviewURL: "https://p/1"},
		{ID: "t2", Name: "Song Two", Artists: []string{"Artist Two"}, Album: "", DurationMS: 245000},
	}
	artists = []models.Artist{
		{ID: "a1", Name: "Artist One", Genres: []string{"indie pop", "dream pop"}, Followers: 42, URL: "https://open.spotify.com/artist/a1"},
		{ID: "a2", Name: "Artist Two", Genres: []string{}},
	}
	genres = []models.GenreCount{{Genre: "indie pop", Count: 3}, {Genre: "k-pop", Count: 1}}
)

func TestParseFormat(t *testing.T) {
	tc := []struct {
		in   string
		want Format
	}{
		{"", Table},
		{"TABLE", Table},
		{"json", JSON},
		{"csv", CSV},
		{"md", Markdown},
		{"markdown", Markdown},
	}

	for _, tt := range tc {
		got, err := ParseFormat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}

	if _, err := ParseFormat("xml"); !errors.Is(err, shared.ErrInvalidFlag) {
		t.Errorf("expected ErrInvalidFlag, got %v", err)
	}
}

func TestHelpers(t *testing.T) {
	t.Run("GenreTitle", func(t *testing.T) {
		for in, want := range map[string]string{
			"indie pop": "Indie Pop",
			"k-pop":     "K-Pop",
			"":          "",
		} {
			if got := GenreTitle(in); got != want {
				t.Errorf("GenreTitle(%q) = %q, want %q", in, got, want)
			}
		}
	})

	t.Run("FormatDuration", func(t *testing.T) {
		for ms, want := range map[int]string{0: "0:00", 180000: "3:00", 245000: "4:05", 3599000: "59:59"} {
			if got := FormatDuration(ms); got != want {
				t.Errorf("FormatDuration(%d) = %q, want %q", ms, got, want)
			}
		}
	})
}

func TestWriteTracks(t *testing.T) {
	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteTracks(&buf, tracks, Table); err != nil {
			t.Fatalf("WriteTracks failed: %v", err)
		}

		out := buf.String()
		for _, want := range []string{"Song One", "Artist One", "Album One", "3:00", "4:05"} {
			if !strings.Contains(out, want) {
				t.Errorf("table missing %q, got:\n%s", want, out)
			}
		}
		if strings.Contains(out, "Guest") {
			t.Errorf("table should show only the first artist, got:\n%s", out)
		}
	})

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteTracks(&buf, tracks, CSV); err != nil {
			t.Fatalf("WriteTracks failed: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if lines[0] != "#,Track,Artist,Album,Duration,Preview" {
			t.Errorf("unexpected header %q", lines[0])
		}
		if lines[1] != "1,Song One,Artist One,Album One,3:00,https://p/1" {
			t.Errorf("unexpected first record %q", lines[1])
		}
		if len(lines) != 3 {
			t.Errorf("expected 3 lines, got %d", len(lines))
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteTracks(&buf, tracks, JSON); err != nil {
			t.Fatalf("WriteTracks failed: %v", err)
		}

		var decoded []models.Track
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(decoded) != 2 || decoded[0].Artists[1] != "Guest" {
			t.Errorf("unexpected decoded tracks: %+v", decoded)
		}
	})

	t.Run("write failure", func(t *testing.T) {
		if err := WriteTracks(&th.FWriter{}, tracks, Markdown); err == nil {
			t.Error("expected write error")
		}
	})
}

func TestWriteArtists(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteArtists(&buf, artists, Markdown); err != nil {
		t.Fatalf("WriteArtists failed: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "| # | Artist | Genres | Followers | URL |\n| --- | --- | --- | --- | --- |\n") {
		t.Errorf("unexpected Markdown header:\n%s", out)
	}
	if !strings.Contains(out, "| 1 | Artist One | indie pop, dream pop | 42 | https://open.spotify.com/artist/a1 |") {
		t.Errorf("Markdown missing first artist:\n%s", out)
	}
	if !strings.Contains(out, "| 2 | Artist Two |  | 0 |  |") {
		t.Errorf("Markdown missing second artist:\n%s", out)
	}
}

func TestWriteGenres(t *testing.T) {
	t.Run("table title-cases", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteGenres(&buf, genres, Table); err != nil {
			t.Fatalf("WriteGenres failed: %v", err)
		}
		if !strings.Contains(buf.String(), "Indie Pop") {
			t.Errorf("expected title-cased genre, got:\n%s", buf.String())
		}
	})

	t.Run("csv keeps raw tags", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteGenres(&buf, genres, CSV); err != nil {
			t.Fatalf("WriteGenres failed: %v", err)
		}
		if !strings.Contains(buf.String(), "1,indie pop,3") {
			t.Errorf("expected raw genre, got:\n%s", buf.String())
		}
	})

	t.Run("empty", func(t *testing.T) {
		for _, f := range []Format{Table, Markdown} {
			var buf bytes.Buffer
			if err := WriteGenres(&buf, nil, f); err != nil {
				t.Fatalf("WriteGenres failed: %v", err)
			}
			if strings.TrimSpace(buf.String()) != NoGenres {
				t.Errorf("%s: expected %q, got %q", f, NoGenres, buf.String())
			}
		}

		var buf bytes.Buffer
		if err := WriteGenres(&buf, []models.GenreCount{}, JSON); err != nil {
			t.Fatalf("WriteGenres failed: %v", err)
		}
		if strings.TrimSpace(buf.String()) != "[]" {
			t.Errorf("expected empty JSON array, got %q", buf.String())
		}
	})
}

func TestToMarkdownEscapesPipes(t *testing.T) {
	out := string(ToMarkdown([]string{"Name"}, [][]string{{"a|b"}}))
	if !strings.Contains(out, `| a\|b |`) {
		t.Errorf("expected escaped pipe, got %q", out)
	}
}
