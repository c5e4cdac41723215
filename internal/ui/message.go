package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/hymnal/internal/models"
	"github.com/desertthunder/hymnal/internal/translation"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgCatalogLoaded MsgKind = iota
	MsgTitleResolved
	MsgDetailResolved
	MsgHymnGenerated
	MsgInspiration
)

type catalogData struct {
	hymns  []models.Hymn
	recent []models.Hymn
	err    error
}

// resolvedData carries a fetched translation back to the surface whose ticket requested it.
type resolvedData struct {
	id     int
	field  string
	ticket translation.Ticket
	result translation.Result
}

// catalogLoadedMsg is the constructor for [MsgCatalogLoaded]
func catalogLoadedMsg(hymns, recent []models.Hymn, err error) Msg {
	return Msg{kind: MsgCatalogLoaded, data: catalogData{hymns: hymns, recent: recent, err: err}}
}

// titleResolvedMsg is the constructor for [MsgTitleResolved]
func titleResolvedMsg(id int, ticket translation.Ticket, res translation.Result) Msg {
	return Msg{kind: MsgTitleResolved, data: resolvedData{id: id, ticket: ticket, result: res}}
}

// detailResolvedMsg is the constructor for [MsgDetailResolved]
func detailResolvedMsg(field string, ticket translation.Ticket, res translation.Result) Msg {
	return Msg{kind: MsgDetailResolved, data: resolvedData{field: field, ticket: ticket, result: res}}
}

// hymnGeneratedMsg is the constructor for [MsgHymnGenerated]
func hymnGeneratedMsg(hymn models.GeneratedHymn) Msg {
	return Msg{kind: MsgHymnGenerated, data: hymn}
}

// inspirationMsg is the constructor for [MsgInspiration]
func inspirationMsg(insp models.Inspiration) Msg {
	return Msg{kind: MsgInspiration, data: insp}
}
