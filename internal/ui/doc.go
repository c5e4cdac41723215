// Package ui implements an interactive terminal hymnal using bubbletea's Elm architecture.
//
// Views:
//  1. [ListView] : Browse the catalog, filter by category (c) and search by number or title (/)
//  2. [DetailView] : Read a hymn's lyrics in the selected language
//  3. [FavoritesView] : Liked catalog hymns in catalog order, then liked generated hymns newest first
//  4. [GenerateView] : Draft a new hymn with the AI generator
//
// Favorites and drafting require a signed-in user. When a search matches nothing, g writes a
// hymn about the search term instead.
//
// Every displayed text (each list title, the detail title and lyrics) is bound to its own
// [translation.Binding]. Switching language (t) begins new requests on every binding; pending
// fetches run as commands and report back with their ticket, so a result that arrives after
// another language switch is dropped.
package ui
