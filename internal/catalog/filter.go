package catalog

import (
	"strconv"
	"strings"

	"github.com/desertthunder/hymnal/internal/models"
)

// Filter returns the hymns in category whose number or any title variant contains search.
//
// An empty category or [models.AllCategories] matches everything, as does an empty search.
// Matching is a case-insensitive substring test with whitespace kept as typed. Lyrics are never
// searched and input order is preserved.
func Filter(hymns []models.Hymn, category models.Category, search string) []models.Hymn {
	term := strings.ToLower(search)

	out := make([]models.Hymn, 0, len(hymns))
	for _, h := range hymns {
		if !MatchesCategory(h, category) {
			continue
		}
		if term != "" && !matchesTerm(h, term) {
			continue
		}
		out = append(out, h)
	}
	return out
}

// MatchesCategory reports whether h belongs to category, treating "all" as a wildcard.
func MatchesCategory(h models.Hymn, category models.Category) bool {
	return category == "" || category == models.AllCategories || h.Category == category
}

// Matches reports whether h passes the search predicate for search.
func Matches(h models.Hymn, search string) bool {
	return search == "" || matchesTerm(h, strings.ToLower(search))
}

func matchesTerm(h models.Hymn, term string) bool {
	if strings.Contains(strconv.Itoa(h.Number), term) {
		return true
	}
	for _, title := range h.Title {
		if strings.Contains(strings.ToLower(title), term) {
			return true
		}
	}
	return false
}
