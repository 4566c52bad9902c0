// package formatter renders top tracks, artists and genres as tables, JSON, CSV or Markdown
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/desertthunder/spotstats/internal/models"
	"github.com/desertthunder/spotstats/internal/shared"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NoGenres is shown in place of an empty genre list.
const NoGenres = "No genres found."

// Format selects an output encoding.
type Format string

const (
	Table    Format = "table"
	JSON     Format = "json"
	CSV      Format = "csv"
	Markdown Format = "markdown"
)

// ParseFormat accepts a format name, defaulting to [Table] for an empty string.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return Table, nil
	case Table, JSON, CSV, Markdown:
		return f, nil
	case "md":
		return Markdown, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (use table, json, csv or markdown)", shared.ErrInvalidFlag, s)
	}
}

var titleCaser = cases.Title(language.English)

// GenreTitle title-cases a raw genre tag for display, e.g. "indie pop" becomes "Indie Pop".
func GenreTitle(genre string) string {
	return titleCaser.String(genre)
}

// FormatDuration renders milliseconds as m:ss.
func FormatDuration(ms int) string {
	secs := ms / 1000
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// rows is a header plus records, shared by the table, CSV and Markdown encoders.
type rows struct {
	header  []string
	records [][]string
}

func trackRows(tracks []models.Track) rows {
	r := rows{header: []string{"#", "Track", "Artist", "Album", "Duration", "Preview"}}
	for i, t := range tracks {
		r.records = append(r.records, []string{
			strconv.Itoa(i + 1),
			t.Name,
			t.PrimaryArtist(),
			t.Album,
			FormatDuration(t.DurationMS),
			t.PreviewURL,
		})
	}
	return r
}

func artistRows(artists []models.Artist) rows {
	r := rows{header: []string{"#", "Artist", "Genres", "Followers", "URL"}}
	for i, a := range artists {
		r.records = append(r.records, []string{
			strconv.Itoa(i + 1),
			a.Name,
			strings.Join(a.Genres, ", "),
			strconv.Itoa(a.Followers),
			a.URL,
		})
	}
	return r
}

func genreRows(genres []models.GenreCount) rows {
	r := rows{header: []string{"#", "Genre", "Artists"}}
	for i, g := range genres {
		r.records = append(r.records, []string{strconv.Itoa(i + 1), GenreTitle(g.Genre), strconv.Itoa(g.Count)})
	}
	return r
}

// WriteTracks writes tracks to w in format f.
func WriteTracks(w io.Writer, tracks []models.Track, f Format) error {
	return write(w, tracks, trackRows(tracks), f)
}

// WriteArtists writes artists to w in format f. Genres are joined with ", ".
func WriteArtists(w io.Writer, artists []models.Artist, f Format) error {
	return write(w, artists, artistRows(artists), f)
}

// WriteGenres writes genre counts to w in format f, or [NoGenres] for an empty table or Markdown list.
//
// JSON and CSV keep the raw tags; the table and Markdown encoders title-case them.
func WriteGenres(w io.Writer, genres []models.GenreCount, f Format) error {
	if len(genres) == 0 && (f == Table || f == Markdown) {
		_, err := fmt.Fprintln(w, NoGenres)
		return err
	}

	r := genreRows(genres)
	if f == CSV {
		for i, g := range genres {
			r.records[i][1] = g.Genre
		}
	}
	return write(w, genres, r, f)
}

func write(w io.Writer, data any, r rows, f Format) error {
	var (
		out []byte
		err error
	)

	switch f {
	case JSON:
		out, err = shared.MarshalJSON(data, true)
		out = append(out, '\n')
	case CSV:
		out, err = ToCSV(r.header, r.records)
	case Markdown:
		out = ToMarkdown(r.header, r.records)
	case Table, "":
		out, err = ToTable(r.header, r.records)
	default:
		err = fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, f)
	}
	if err != nil {
		return err
	}

	_, err = w.Write(out)
	return err
}

// ToTable renders records as a bordered text table.
func ToTable(header []string, records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)

	cols := make([]any, len(header))
	for i, h := range header {
		cols[i] = h
	}
	table.Header(cols...)

	for _, record := range records {
		if err := table.Append(record); err != nil {
			return nil, fmt.Errorf("failed to append table row: %w", err)
		}
	}

	if err := table.Render(); err != nil {
		return nil, fmt.Errorf("failed to render table: %w", err)
	}
	return buf.Bytes(), nil
}

// ToCSV encodes records with a header line.
func ToCSV(header []string, records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	if err := writer.WriteAll(records); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ToMarkdown renders records as a GitHub-flavored Markdown table. Pipes inside cells are escaped.
func ToMarkdown(header []string, records [][]string) []byte {
	var buf bytes.Buffer

	writeRow := func(cells []string) {
		buf.WriteString("|")
		for _, c := range cells {
			buf.WriteString(" " + strings.ReplaceAll(c, "|", `\|`) + " |")
		}
		buf.WriteString("\n")
	}

	writeRow(header)
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(sep)

	for _, record := range records {
		writeRow(record)
	}

	return buf.Bytes()
}
