// package formatter renders hymns and liked items as CSV, Markdown and plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/hymnal/internal/models"
	"github.com/desertthunder/hymnal/internal/shared"
)

// Format is an output format accepted by the CLI.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

// ParseFormat accepts a format name or common alias ("md", "txt").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// Text returns t in lang, falling back to English when lang has no entry.
func Text(t models.MultilingualText, lang models.Language) string {
	if v := t[lang]; v != "" {
		return v
	}
	return t.English()
}

func title(h models.Hymn, lang models.Language) string {
	if v := Text(h.Title, lang); v != "" {
		return v
	}
	return h.DisplayTitle()
}

// HymnsToCSV converts hymns to CSV with columns: ID, Number, Title, Category, Created, Audio
func HymnsToCSV(hymns []models.Hymn, lang models.Language) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Number", "Title", "Category", "Created", "Audio"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, h := range hymns {
		record := []string{
			strconv.Itoa(h.ID),
			strconv.Itoa(h.Number),
			title(h, lang),
			string(h.Category),
			h.CreatedAt.UTC().Format(time.DateOnly),
			h.AudioURL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// HymnToMarkdown renders one hymn with its lyrics, audio link and sheet music pages.
func HymnToMarkdown(h models.Hymn, lang models.Language) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %d. %s\n\n", h.Number, title(h, lang)))
	buf.WriteString(fmt.Sprintf("**Category**: %s\n", h.Category))
	buf.WriteString(fmt.Sprintf("**Language**: %s\n\n", lang.Label()))

	if lyrics := Text(h.Lyrics, lang); lyrics != "" {
		for _, stanza := range strings.Split(lyrics, "\n\n") {
			buf.WriteString(strings.ReplaceAll(strings.TrimSpace(stanza), "\n", "  \n"))
			buf.WriteString("\n\n")
		}
	}

	if h.AudioURL != "" {
		buf.WriteString(fmt.Sprintf("[Listen](%s)\n\n", h.AudioURL))
	}

	if len(h.SheetMusicURL) > 0 {
		buf.WriteString("## Sheet Music\n\n")
		for i, url := range h.SheetMusicURL {
			buf.WriteString(fmt.Sprintf("%d. [Page %d](%s)\n", i+1, i+1, url))
		}
	}

	return buf.Bytes()
}

// HymnsToMarkdown renders a titled index of hymns.
func HymnsToMarkdown(heading string, hymns []models.Hymn, lang models.Language) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", heading))
	buf.WriteString(fmt.Sprintf("**Hymns**: %d\n\n", len(hymns)))

	for _, h := range hymns {
		buf.WriteString(fmt.Sprintf("- **%d** %s _(%s)_\n", h.Number, title(h, lang), h.Category))
	}

	return buf.Bytes()
}

// HymnToText renders one hymn as plain text.
func HymnToText(h models.Hymn, lang models.Language) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%d. %s\n", h.Number, title(h, lang)))
	buf.WriteString(fmt.Sprintf("Category: %s\n", h.Category))
	if h.AudioURL != "" {
		buf.WriteString(fmt.Sprintf("Audio: %s\n", h.AudioURL))
	}
	if lyrics := Text(h.Lyrics, lang); lyrics != "" {
		buf.WriteString("\n")
		buf.WriteString(strings.TrimRight(lyrics, "\n"))
		buf.WriteString("\n")
	}

	return buf.Bytes()
}

// HymnsToText renders one line per hymn.
func HymnsToText(hymns []models.Hymn, lang models.Language) []byte {
	var buf bytes.Buffer
	for _, h := range hymns {
		buf.WriteString(fmt.Sprintf("%4d  %-40s  %s\n", h.Number, title(h, lang), h.Category))
	}
	return buf.Bytes()
}

// GeneratedToMarkdown renders an AI-generated hymn.
func GeneratedToMarkdown(g models.GeneratedHymn) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", g.Title))
	for _, stanza := range strings.Split(g.Lyrics, "\n\n") {
		buf.WriteString(strings.ReplaceAll(strings.TrimSpace(stanza), "\n", "  \n"))
		buf.WriteString("\n\n")
	}

	return buf.Bytes()
}

// LikedToText renders liked items as a plain list, marking generated entries.
func LikedToText(items []models.LikedItem) []byte {
	var buf bytes.Buffer
	for _, item := range items {
		liked := time.UnixMilli(item.LikedAt).UTC().Format(time.DateTime)
		if item.IsCatalog() {
			buf.WriteString(fmt.Sprintf("%4d  %-40s  liked %s\n", item.Hymn.Number, item.Title(), liked))
		} else {
			buf.WriteString(fmt.Sprintf("   ✦  %-40s  liked %s\n", item.Title(), liked))
		}
	}
	return buf.Bytes()
}

// WriteExport writes data to path, creating or truncating it.
func WriteExport(path string, data []byte) error {
	if path == "" {
		return fmt.Errorf("%w: output path", shared.ErrMissingArgument)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
