package ui

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/hymnal/internal/auth"
	"github.com/desertthunder/hymnal/internal/catalog"
	"github.com/desertthunder/hymnal/internal/likes"
	"github.com/desertthunder/hymnal/internal/models"
	"github.com/desertthunder/hymnal/internal/services"
	"github.com/desertthunder/hymnal/internal/shared"
	"github.com/desertthunder/hymnal/internal/translation"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ListView ViewState = iota
	DetailView
	FavoritesView
	GenerateView
)

const (
	fieldTitle  = "title"
	fieldLyrics = "lyrics"
	recentCount = 4
)

// Options holds the TUI's collaborators.
type Options struct {
	Store     catalog.Store
	Generator services.Generator
	Resolver  *translation.Resolver
	Likes     *likes.Service
	Auth      auth.Provider // nil means nobody can sign in
	Language  models.Language
	Logger    *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	store     catalog.Store
	generator services.Generator
	resolver  *translation.Resolver
	likes     *likes.Service
	auth      auth.Provider
	logger    *log.Logger

	view     ViewState
	lang     models.Language
	category models.Category
	width    int
	height   int

	hymns     []models.Hymn
	recent    []models.Hymn
	filtered  []models.Hymn
	hymnList  list.Model
	titles    map[int]*translation.Binding
	search    textinput.Model
	searching bool

	selected     *models.Hymn
	detailTitle  *translation.Binding
	detailLyrics *translation.Binding

	favoriteList list.Model

	topic      textinput.Model
	generated  *models.GeneratedHymn
	generating bool

	inspiration *models.Inspiration
	status      string
	err         error
	help        help.Model
	keys        keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Language == "" {
		opts.Language = models.English
	}

	return &Model{
		ctx:          ctx,
		store:        opts.Store,
		generator:    opts.Generator,
		resolver:     opts.Resolver,
		likes:        opts.Likes,
		auth:         opts.Auth,
		logger:       opts.Logger,
		view:         ListView,
		lang:         opts.Language,
		category:     models.AllCategories,
		hymnList:     newList("Hymns"),
		titles:       make(map[int]*translation.Binding),
		search:       newInput("Search by number or title"),
		detailTitle:  opts.Resolver.Bind(),
		detailLyrics: opts.Resolver.Bind(),
		favoriteList: newList("Favorites"),
		topic:        newInput("What should the hymn be about?"),
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

func newInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

// Init loads the catalog and the liked set.
func (m *Model) Init() tea.Cmd {
	return m.loadCatalog()
}

// Close cancels every pending translation.
func (m *Model) Close() {
	for _, b := range m.titles {
		b.Close()
	}
	m.detailTitle.Close()
	m.detailLyrics.Close()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.hymnList.SetSize(msg.Width-4, msg.Height-10)
		m.favoriteList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) && msg.String() == "ctrl+c" {
			return m.quit()
		}
		if m.err != nil {
			if key.Matches(msg, m.keys.quit) {
				return m.quit()
			}
			return m, nil
		}

		switch m.view {
		case ListView:
			return m.handleListKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case FavoritesView:
			return m.handleFavoritesKeys(msg)
		case GenerateView:
			return m.handleGenerateKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgCatalogLoaded:
		data := msg.data.(catalogData)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.hymns = data.hymns
		m.recent = data.recent
		return m, m.refreshList()

	case MsgTitleResolved:
		data := msg.data.(resolvedData)
		if b, ok := m.titles[data.id]; ok && b.Complete(data.ticket, data.result) {
			m.setItems()
		}

	case MsgDetailResolved:
		data := msg.data.(resolvedData)
		b := m.detailTitle
		if data.field == fieldLyrics {
			b = m.detailLyrics
		}
		b.Complete(data.ticket, data.result)

	case MsgHymnGenerated:
		hymn := msg.data.(models.GeneratedHymn)
		m.generating = false
		m.generated = &hymn
		m.view = GenerateView
		m.topic.Blur()
		if hymn.Failed() {
			m.status = hymn.Lyrics
		}

	case MsgInspiration:
		insp := msg.data.(models.Inspiration)
		m.inspiration = &insp
	}
	return m, nil
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKeys(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m.quit()
	case key.Matches(msg, m.keys.enter):
		if h, ok := m.selectedHymn(); ok {
			return m, m.openDetail(h)
		}
		return m, nil
	case key.Matches(msg, m.keys.back):
		if m.search.Value() != "" {
			m.search.SetValue("")
			return m, m.refreshList()
		}
		return m, nil
	case key.Matches(msg, m.keys.language):
		return m, m.cycleLanguage()
	case key.Matches(msg, m.keys.category):
		m.category = nextCategory(m.category)
		return m, m.refreshList()
	case key.Matches(msg, m.keys.search):
		m.searching = true
		m.search.Focus()
		return m, nil
	case key.Matches(msg, m.keys.favorites):
		return m, m.openFavorites()
	case key.Matches(msg, m.keys.like):
		if h, ok := m.selectedHymn(); ok {
			m.toggleLike(h)
		}
		return m, nil
	case key.Matches(msg, m.keys.generate):
		if term := strings.TrimSpace(m.search.Value()); term != "" && len(m.filtered) == 0 {
			return m, m.generateFromSearch(term)
		}
		return m, m.openGenerate()
	case key.Matches(msg, m.keys.inspire):
		return m, m.inspire()
	}

	var cmd tea.Cmd
	m.hymnList, cmd = m.hymnList.Update(msg)
	return m, cmd
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return m, nil
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		return m, m.refreshList()
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		return m, tea.Batch(cmd, m.refreshList())
	}
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m.quit()
	case key.Matches(msg, m.keys.back):
		m.view = ListView
		m.status = ""
		return m, nil
	case key.Matches(msg, m.keys.language):
		return m, m.cycleLanguage()
	case key.Matches(msg, m.keys.like):
		if m.selected != nil {
			m.toggleLike(*m.selected)
		}
	}
	return m, nil
}

func (m *Model) handleFavoritesKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m.quit()
	case key.Matches(msg, m.keys.back):
		m.view = ListView
		m.status = ""
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if it, ok := m.favoriteList.SelectedItem().(favoriteItem); ok && it.item.IsCatalog() {
			return m, m.openDetail(*it.item.Hymn)
		}
		return m, nil
	case key.Matches(msg, m.keys.like):
		if it, ok := m.favoriteList.SelectedItem().(favoriteItem); ok {
			if it.item.IsCatalog() {
				m.toggleLike(*it.item.Hymn)
			} else {
				m.toggleLike(*it.item.Generated)
			}
			m.setFavorites()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.favoriteList, cmd = m.favoriteList.Update(msg)
	return m, cmd
}

func (m *Model) handleGenerateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.generating {
		if msg.Type == tea.KeyEsc {
			m.view = ListView
		}
		return m, nil
	}

	if m.topic.Focused() {
		switch msg.Type {
		case tea.KeyEsc:
			m.topic.Blur()
			m.view = ListView
			m.status = ""
			return m, nil
		case tea.KeyEnter:
			topic := strings.TrimSpace(m.topic.Value())
			if topic == "" {
				return m, nil
			}
			return m, m.generate(topic)
		}

		var cmd tea.Cmd
		m.topic, cmd = m.topic.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m.quit()
	case key.Matches(msg, m.keys.back):
		m.view = ListView
		m.status = ""
	case key.Matches(msg, m.keys.enter):
		m.generated = nil
		m.status = ""
		m.topic.SetValue("")
		m.topic.Focus()
	case key.Matches(msg, m.keys.like):
		if m.generated == nil || !m.generated.Usable() {
			m.status = "Only a completed hymn can be saved."
			return m, nil
		}
		m.toggleLike(*m.generated)
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ListView:
		m.hymnList, cmd = m.hymnList.Update(msg)
	case FavoritesView:
		m.favoriteList, cmd = m.favoriteList.Update(msg)
	}
	return m, cmd
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.Close()
	return m, tea.Quit
}

// requireAuth gates the signed-in portal: favorites and hymn drafting.
func (m *Model) requireAuth() error {
	if m.auth == nil || !m.auth.IsAuthenticated() {
		return fmt.Errorf("%w: run `hymnal auth login` to use this", shared.ErrNotAuthenticated)
	}
	return nil
}

func (m *Model) selectedHymn() (models.Hymn, bool) {
	it, ok := m.hymnList.SelectedItem().(hymnItem)
	if !ok {
		return models.Hymn{}, false
	}
	return it.hymn, true
}

func (m *Model) titleBinding(id int) *translation.Binding {
	b, ok := m.titles[id]
	if !ok {
		b = m.resolver.Bind()
		m.titles[id] = b
	}
	return b
}

// refreshList re-filters the catalog and begins title resolution for every shown hymn.
func (m *Model) refreshList() tea.Cmd {
	m.filtered = catalog.Filter(m.hymns, m.category, m.search.Value())

	var cmds []tea.Cmd
	for _, h := range m.filtered {
		req := translation.Request{Field: h.Title, Language: m.lang, Fallback: h.DisplayTitle()}
		res, ticket := m.titleBinding(h.ID).Begin(m.ctx, req)
		if res.Loading() {
			cmds = append(cmds, m.fetchTitle(h.ID, ticket, req))
		}
	}

	m.setItems()
	return tea.Batch(cmds...)
}

func (m *Model) setItems() {
	items := make([]list.Item, len(m.filtered))
	for i, h := range m.filtered {
		res := m.titleBinding(h.ID).Current()
		items[i] = hymnItem{hymn: h, title: res.Text, loading: res.Loading(), liked: m.likes.IsLiked(h)}
	}
	m.hymnList.SetItems(items)
	m.hymnList.Title = m.listTitle()
}

func (m *Model) listTitle() string {
	title := "Hymns"
	if m.category != models.AllCategories {
		title = string(m.category)
	}
	return fmt.Sprintf("%s (%d) • %s", title, len(m.filtered), m.lang.Label())
}

func (m *Model) setFavorites() {
	var items []list.Item
	for _, h := range m.likes.LikedCatalogItems(m.hymns) {
		items = append(items, favoriteItem{item: models.LikedItem{Hymn: &h}})
	}
	for _, li := range m.likes.LikedGenerated() {
		items = append(items, favoriteItem{item: li})
	}
	m.favoriteList.SetItems(items)
	m.favoriteList.Title = fmt.Sprintf("Favorites (%d)", len(items))
}

func (m *Model) cycleLanguage() tea.Cmd {
	m.lang = m.lang.Next()
	m.status = "Language: " + m.lang.Label()

	cmds := []tea.Cmd{m.refreshList()}
	if m.selected != nil {
		cmds = append(cmds, m.resolveDetail())
	}
	return tea.Batch(cmds...)
}

func (m *Model) openDetail(h models.Hymn) tea.Cmd {
	m.selected = &h
	m.view = DetailView
	m.status = ""
	return m.resolveDetail()
}

// resolveDetail begins resolution of the selected hymn's title and lyrics in the current language.
func (m *Model) resolveDetail() tea.Cmd {
	h := m.selected

	var cmds []tea.Cmd
	for _, f := range []struct {
		name    string
		binding *translation.Binding
		req     translation.Request
	}{
		{fieldTitle, m.detailTitle, translation.Request{Field: h.Title, Language: m.lang, Fallback: h.DisplayTitle()}},
		{fieldLyrics, m.detailLyrics, translation.Request{Field: h.Lyrics, Language: m.lang}},
	} {
		res, ticket := f.binding.Begin(m.ctx, f.req)
		if res.Loading() {
			cmds = append(cmds, m.fetchDetail(f.name, ticket, f.req))
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) openFavorites() tea.Cmd {
	if err := m.requireAuth(); err != nil {
		m.status = err.Error()
		return nil
	}
	m.view = FavoritesView
	m.status = ""
	m.setFavorites()
	return nil
}

func (m *Model) openGenerate() tea.Cmd {
	if err := m.requireAuth(); err != nil {
		m.status = err.Error()
		return nil
	}
	m.view = GenerateView
	m.status = ""
	m.generated = nil
	m.topic.SetValue("")
	m.topic.Focus()
	return nil
}

func (m *Model) toggleLike(item models.Likeable) {
	liked, err := m.likes.Toggle(m.ctx, item)
	switch {
	case err != nil:
		m.logger.Error("failed to save favorite", "error", err)
		m.status = "Could not save favorite: " + err.Error()
	case liked:
		m.status = "Added to favorites"
	default:
		m.status = "Removed from favorites"
	}
	m.setItems()
}

func nextCategory(c models.Category) models.Category {
	cycle := append([]models.Category{models.AllCategories}, models.Categories...)
	i := slices.Index(cycle, c)
	return cycle[(i+1)%len(cycle)]
}

func (m *Model) loadCatalog() tea.Cmd {
	return func() tea.Msg {
		hymns, err := m.store.GetAll(m.ctx)
		if err != nil {
			return catalogLoadedMsg(nil, nil, err)
		}
		recent, err := m.store.GetRecent(m.ctx, recentCount)
		if err != nil {
			return catalogLoadedMsg(nil, nil, err)
		}
		if err := m.likes.Load(m.ctx); err != nil {
			m.logger.Warn("failed to load favorites", "error", err)
		}
		return catalogLoadedMsg(hymns, recent, nil)
	}
}

func (m *Model) fetchTitle(id int, ticket translation.Ticket, req translation.Request) tea.Cmd {
	return func() tea.Msg {
		res, err := m.resolver.Fetch(ticket.Context(), req)
		if err != nil {
			return nil
		}
		return titleResolvedMsg(id, ticket, res)
	}
}

func (m *Model) fetchDetail(field string, ticket translation.Ticket, req translation.Request) tea.Cmd {
	return func() tea.Msg {
		res, err := m.resolver.Fetch(ticket.Context(), req)
		if err != nil {
			return nil
		}
		return detailResolvedMsg(field, ticket, res)
	}
}

func (m *Model) generate(topic string) tea.Cmd {
	m.generating = true
	m.status = ""
	lang := m.lang
	return func() tea.Msg {
		return hymnGeneratedMsg(m.generator.GenerateHymn(m.ctx, topic, lang))
	}
}

func (m *Model) generateFromSearch(term string) tea.Cmd {
	m.generating = true
	m.view = GenerateView
	m.generated = nil
	m.topic.SetValue(term)
	m.topic.Blur()
	lang := m.lang
	return func() tea.Msg {
		return hymnGeneratedMsg(m.generator.SearchAndGenerateHymn(m.ctx, term, lang))
	}
}

func (m *Model) inspire() tea.Cmd {
	category, lang := m.category, m.lang
	return func() tea.Msg {
		return inspirationMsg(m.generator.GenerateInspiration(m.ctx, category, lang))
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	var body string
	switch m.view {
	case ListView:
		body = m.renderList()
	case DetailView:
		body = m.renderDetail()
	case FavoritesView:
		body = m.renderFavorites()
	case GenerateView:
		body = m.renderGenerate()
	}

	if m.status != "" {
		body += "\n" + styles.warn.Render(m.status)
	}
	return body
}

func (m *Model) renderList() string {
	var b strings.Builder

	if m.inspiration != nil {
		b.WriteString(styles.accent.Render(m.inspiration.InspirationalText))
		if m.inspiration.BibleVerse != "" {
			b.WriteString("\n" + styles.help.Render("— "+m.inspiration.BibleVerse))
		}
		b.WriteString("\n\n")
	}

	if m.search.Value() == "" && m.category == models.AllCategories && len(m.recent) > 0 {
		titles := make([]string, len(m.recent))
		for i, h := range m.recent {
			titles[i] = fmt.Sprintf("#%d %s", h.Number, h.DisplayTitle())
		}
		b.WriteString(styles.muted.Render("Recently added: "+strings.Join(titles, " · ")) + "\n\n")
	}

	if m.searching || m.search.Value() != "" {
		b.WriteString(m.search.View() + "\n\n")
	}

	if len(m.filtered) == 0 && m.search.Value() != "" {
		b.WriteString(styles.warn.Render(fmt.Sprintf("No hymns match %q.", m.search.Value())))
		b.WriteString("\n" + styles.help.Render("Press g to write a new hymn about it.") + "\n")
	} else {
		b.WriteString(m.hymnList.View() + "\n")
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.search, m.keys.category, m.keys.language, m.keys.like, m.keys.favorites, m.keys.generate, m.keys.inspire, m.keys.quit}
	b.WriteString("\n" + m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderDetail() string {
	if m.selected == nil {
		return ""
	}
	h := m.selected

	title := m.detailTitle.Current()
	heading := fmt.Sprintf("%d. %s", h.Number, title.Text)
	if title.Loading() {
		heading += " …"
	}

	meta := fmt.Sprintf("%s • %s", h.Category, m.lang.Label())
	if m.likes.IsLiked(*h) {
		meta += " • " + styles.accent.Render("♥")
	}

	lyrics := m.detailLyrics.Current()
	text := lyrics.Text
	if lyrics.Loading() {
		text = styles.help.Render("Translating…") + "\n\n" + text
	}

	var media []string
	if h.AudioURL != "" {
		media = append(media, "Audio: "+h.AudioURL)
	}
	if n := len(h.SheetMusicURL); n > 0 {
		media = append(media, fmt.Sprintf("Sheet music: %d page(s)", n))
	}

	helpKeys := []key.Binding{m.keys.language, m.keys.like, m.keys.back, m.keys.quit}

	out := fmt.Sprintf("%s\n%s\n\n%s\n", styles.title.Render(heading), styles.muted.Render(meta), text)
	if len(media) > 0 {
		out += "\n" + styles.muted.Render(strings.Join(media, "\n")) + "\n"
	}
	return out + "\n" + m.help.ShortHelpView(helpKeys)
}

func (m *Model) renderFavorites() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.like, m.keys.back, m.keys.quit}
	if len(m.favoriteList.Items()) == 0 {
		return fmt.Sprintf("%s\n%s\n\n%s", styles.title.Render("Favorites"), "Nothing liked yet.", m.help.ShortHelpView(helpKeys))
	}
	return fmt.Sprintf("%s\n\n%s", m.favoriteList.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderGenerate() string {
	title := styles.title.Render("Write a Hymn")

	switch {
	case m.generating:
		return fmt.Sprintf("%s\n%s\n\nWriting a hymn about %q…", title, m.topic.View(), m.topic.Value())
	case m.generated == nil:
		helpKeys := []key.Binding{key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "generate")), m.keys.back}
		return fmt.Sprintf("%s\n%s\n\n%s", title, m.topic.View(), m.help.ShortHelpView(helpKeys))
	}

	g := m.generated
	if g.Failed() {
		helpKeys := []key.Binding{key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "try again")), m.keys.back, m.keys.quit}
		return fmt.Sprintf("%s\n%s\n\n%s", title, styles.err.Render("Generation failed"), m.help.ShortHelpView(helpKeys))
	}

	heading := g.Title
	if m.likes.IsLiked(*g) {
		heading += " ♥"
	}
	helpKeys := []key.Binding{m.keys.like, key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "new draft")), m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, styles.ok.Render(heading), g.Lyrics, m.help.ShortHelpView(helpKeys))
}
