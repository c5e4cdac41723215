package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/hymnal/internal/models"
)

var (
	_ list.Item = hymnItem{}
	_ list.Item = favoriteItem{}
)

// hymnItem wraps [models.Hymn] with its resolved display title to implement [list.Item].
type hymnItem struct {
	hymn    models.Hymn
	title   string
	loading bool
	liked   bool
}

func (i hymnItem) FilterValue() string { return i.title }
func (i hymnItem) Title() string {
	if i.loading {
		return i.title + " …"
	}
	return i.title
}
func (i hymnItem) Description() string {
	desc := fmt.Sprintf("#%d • %s", i.hymn.Number, i.hymn.Category)
	if i.liked {
		desc += " • ♥"
	}
	return desc
}

// favoriteItem wraps a liked catalog or generated hymn.
type favoriteItem struct {
	item models.LikedItem
}

func (i favoriteItem) FilterValue() string { return i.item.Title() }
func (i favoriteItem) Title() string       { return i.item.Title() }
func (i favoriteItem) Description() string {
	if i.item.IsCatalog() {
		return fmt.Sprintf("#%d • %s", i.item.Hymn.Number, i.item.Hymn.Category)
	}
	return "Generated hymn"
}

func newList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 80, 20)
	l.Title = title
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	return l
}
