package formatter

import (
	"encoding/csv"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/hymnal/internal/models"
	"github.com/desertthunder/hymnal/internal/shared"
	th "github.com/desertthunder/hymnal/internal/testing"
)

var amazingGrace = models.Hymn{
	ID:     15,
	Number: 192,
	Title: models.MultilingualText{
		models.English:   "Amazing Grace",
		models.Afrikaans: "Genade Onbeskryflik Groot",
	},
	Lyrics: models.MultilingualText{
		models.English: "Amazing grace, how sweet the sound\nThat saved a wretch like me\n\nT'was grace that taught my heart to fear",
	},
	Category:      models.LentAndCross,
	AudioURL:      "https://example.com/192.mp3",
	SheetMusicURL: []string{"https://example.com/192-1.png", "https://example.com/192-2.png"},
	CreatedAt:     time.Date(2023, 1, 24, 0, 0, 0, 0, time.UTC),
}

var joyToTheWorld = models.Hymn{
	ID:        10,
	Number:    59,
	Title:     models.MultilingualText{models.English: "Joy to the World"},
	Category:  models.Christmas,
	CreatedAt: time.Date(2023, 1, 19, 0, 0, 0, 0, time.UTC),
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{"": FormatText, "txt": FormatText, "MD": FormatMarkdown, "csv": FormatCSV, "json": FormatJSON}
	for in, want := range cases {
		if got, err := ParseFormat(in); err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}

	if _, err := ParseFormat("pdf"); !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestExporters(t *testing.T) {
	hymns := []models.Hymn{joyToTheWorld, amazingGrace}

	t.Run("HymnsToCSV", func(t *testing.T) {
		data, err := HymnsToCSV(hymns, models.Afrikaans)
		if err != nil {
			t.Fatalf("HymnsToCSV failed: %v", err)
		}

		records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("output is not valid CSV: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected header plus 2 rows, got %d", len(records))
		}
		if strings.Join(records[0], ",") != "ID,Number,Title,Category,Created,Audio" {
			t.Errorf("unexpected headers %v", records[0])
		}
		if records[1][2] != "Joy to the World" {
			t.Errorf("missing translation should fall back to English, got %q", records[1][2])
		}
		if records[2][2] != "Genade Onbeskryflik Groot" || records[2][4] != "2023-01-24" {
			t.Errorf("unexpected row %v", records[2])
		}
	})

	t.Run("HymnToMarkdown", func(t *testing.T) {
		out := string(HymnToMarkdown(amazingGrace, models.English))

		for _, want := range []string{
			"# 192. Amazing Grace",
			"**Category**: Lent & Cross",
			"Amazing grace, how sweet the sound  \nThat saved a wretch like me",
			"[Listen](https://example.com/192.mp3)",
			"2. [Page 2](https://example.com/192-2.png)",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("markdown missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("HymnToMarkdown without media", func(t *testing.T) {
		out := string(HymnToMarkdown(joyToTheWorld, models.Zulu))
		if strings.Contains(out, "Listen") || strings.Contains(out, "Sheet Music") {
			t.Errorf("unexpected media sections:\n%s", out)
		}
		if !strings.Contains(out, "**Language**: Zulu") {
			t.Errorf("missing language label:\n%s", out)
		}
	})

	t.Run("HymnsToMarkdown", func(t *testing.T) {
		out := string(HymnsToMarkdown("Favorites", hymns, models.English))
		if !strings.HasPrefix(out, "# Favorites\n\n**Hymns**: 2") {
			t.Errorf("unexpected heading:\n%s", out)
		}
		if !strings.Contains(out, "- **192** Amazing Grace _(Lent & Cross)_") {
			t.Errorf("missing entry:\n%s", out)
		}
	})

	t.Run("HymnToText", func(t *testing.T) {
		out := string(HymnToText(amazingGrace, models.Afrikaans))
		if !strings.HasPrefix(out, "192. Genade Onbeskryflik Groot\n") {
			t.Errorf("unexpected title line:\n%s", out)
		}
		if !strings.Contains(out, "That saved a wretch like me") {
			t.Errorf("lyrics should fall back to English:\n%s", out)
		}
	})

	t.Run("HymnsToText", func(t *testing.T) {
		lines := strings.Split(strings.TrimSpace(string(HymnsToText(hymns, models.English))), "\n")
		if len(lines) != 2 || !strings.Contains(lines[0], "Joy to the World") {
			t.Errorf("unexpected lines %q", lines)
		}
	})

	t.Run("GeneratedToMarkdown", func(t *testing.T) {
		out := string(GeneratedToMarkdown(models.GeneratedHymn{Title: "Morning Light", Lyrics: "Line one\nLine two\n\nLine three"}))
		if !strings.HasPrefix(out, "# Morning Light\n\nLine one  \nLine two\n\nLine three") {
			t.Errorf("unexpected markdown:\n%s", out)
		}
	})

	t.Run("LikedToText", func(t *testing.T) {
		liked := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		hymn, _ := models.NewLikedItem(amazingGrace, liked)
		gen, _ := models.NewLikedItem(models.GeneratedHymn{Title: "Morning Light"}, liked)

		out := string(LikedToText([]models.LikedItem{hymn, gen}))
		if !strings.Contains(out, " 192  Amazing Grace") || !strings.Contains(out, "✦  Morning Light") {
			t.Errorf("unexpected output:\n%s", out)
		}
		if !strings.Contains(out, "liked 2024-05-01 12:00:00") {
			t.Errorf("missing liked timestamp:\n%s", out)
		}
	})

	t.Run("WriteExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "hymns.md")
		if err := WriteExport(path, HymnToMarkdown(amazingGrace, models.English)); err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}

		th.AssertFileExists(t, path)
		if !strings.Contains(th.MustReadFile(t, path), "Amazing Grace") {
			t.Error("written file missing content")
		}

		if err := WriteExport("", nil); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}
