// package models defines the data model for the hymnal catalog and its AI-generated content
package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/hymnal/internal/shared"
)

// Language is an ISO 639-1 code for a supported catalog language.
type Language string

const (
	English   Language = "en"
	Afrikaans Language = "af"
	Zulu      Language = "zu"
	Xhosa     Language = "xh"
)

// Languages lists every supported language in display order.
var Languages = []Language{English, Afrikaans, Zulu, Xhosa}

var languageLabels = map[Language]string{
	English:   "English",
	Afrikaans: "Afrikaans",
	Zulu:      "Zulu",
	Xhosa:     "Xhosa",
}

// Label returns the human-readable name of the language.
func (l Language) Label() string {
	if label, ok := languageLabels[l]; ok {
		return label
	}
	return string(l)
}

// Next cycles to the following language in [Languages].
func (l Language) Next() Language {
	for i, lang := range Languages {
		if lang == l {
			return Languages[(i+1)%len(Languages)]
		}
	}
	return English
}

// ParseLanguage accepts a language code or label, case-insensitively.
func ParseLanguage(s string) (Language, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, lang := range Languages {
		if s == string(lang) || s == strings.ToLower(lang.Label()) {
			return lang, nil
		}
	}
	return "", fmt.Errorf("%w: %q", shared.ErrInvalidLanguage, s)
}

// Category is one of the fixed hymn categories.
type Category string

const (
	Praise             Category = "Praise & Thanksgiving"
	Worship            Category = "Worship & Consecration"
	Communion          Category = "Communion"
	Advent             Category = "Advent"
	Christmas          Category = "Christmas"
	Epiphany           Category = "Epiphany"
	LentAndCross       Category = "Lent & Cross"
	EasterAndAscension Category = "Easter & Ascension"
	Pentecost          Category = "Pentecost"
	Trinity            Category = "Trinity"
	ChristianLife      Category = "Christian Life"
	Guidance           Category = "Guidance & Trust"
	Hope               Category = "Hope & Heaven"
	OpeningAndClosing  Category = "Opening & Closing"
	SpecialOccasions   Category = "Special Occasions"
	Redeemer           Category = "Redeemer"

	// AllCategories is the filter value matching every category.
	AllCategories Category = "all"
	// GeneralTheme is the inspiration theme used when no category is chosen.
	GeneralTheme Category = "general"
)

// Categories lists the closed category enumeration in display order.
var Categories = []Category{
	Praise, Worship, Communion, Advent, Christmas, Epiphany, LentAndCross, EasterAndAscension,
	Pentecost, Trinity, ChristianLife, Guidance, Hope, OpeningAndClosing, SpecialOccasions, Redeemer,
}

// FeaturedCategories are highlighted on the home view.
var FeaturedCategories = []Category{Christmas, EasterAndAscension, Praise, Guidance, Advent, LentAndCross}

// ParseCategory matches a category name case-insensitively. "all" and "general" are accepted.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range append([]Category{AllCategories, GeneralTheme}, Categories...) {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", shared.ErrInvalidCategory, s)
}

// MultilingualText maps a language to its text. English is the canonical entry.
type MultilingualText map[Language]string

// English returns the English entry, or "" when absent.
func (t MultilingualText) English() string {
	return t[English]
}

// Variants returns every non-empty entry in [Languages] order.
func (t MultilingualText) Variants() []string {
	var out []string
	for _, lang := range Languages {
		if v := t[lang]; v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Hymn is an immutable catalog entry.
type Hymn struct {
	ID            int              `json:"id"`
	Number        int              `json:"number"`
	Title         MultilingualText `json:"title"`
	Lyrics        MultilingualText `json:"lyrics"`
	Category      Category         `json:"category"`
	AudioURL      string           `json:"audioUrl,omitempty"`
	SheetMusicURL []string         `json:"sheetMusicUrl,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
}

// Identity implements [Likeable].
func (h Hymn) Identity() string {
	return "hymn-" + strconv.Itoa(h.ID)
}

// DisplayTitle returns the English title, falling back to "Untitled".
func (h Hymn) DisplayTitle() string {
	if t := h.Title.English(); t != "" {
		return t
	}
	return "Untitled"
}

// ErrorTitle is the title of a [GeneratedHymn] that carries a failure message in its lyrics.
const ErrorTitle = "Error"

// GeneratedHymn is AI-produced hymn text with no catalog identity.
type GeneratedHymn struct {
	Title     string `json:"title"`
	Lyrics    string `json:"lyrics"`
	SessionID string `json:"sessionId,omitempty"`
}

// Identity implements [Likeable]. Two generated hymns with the same title share an identity.
func (g GeneratedHymn) Identity() string {
	return "generated-" + g.Title
}

// Failed reports whether g is the failure sentinel.
func (g GeneratedHymn) Failed() bool {
	return g.Title == ErrorTitle
}

// Usable reports whether g can be offered as a draft: non-empty lyrics and not the failure sentinel.
func (g GeneratedHymn) Usable() bool {
	return g.Lyrics != "" && !g.Failed()
}

// Inspiration is a short devotional with an accompanying Bible verse.
// BibleVerse is empty when generation failed.
type Inspiration struct {
	InspirationalText string `json:"inspirationalText"`
	BibleVerse        string `json:"bibleVerse"`
}

// Likeable is implemented by anything that can be added to the liked set.
type Likeable interface {
	Identity() string
}

// IdentityOf returns the liked-set key for item.
func IdentityOf(item Likeable) string {
	return item.Identity()
}
