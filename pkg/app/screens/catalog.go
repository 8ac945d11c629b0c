package screens

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/kerbaras/mangareader/pkg/app/components"
	"github.com/kerbaras/mangareader/pkg/app/styles"
	"github.com/kerbaras/mangareader/pkg/catalog"
	"github.com/kerbaras/mangareader/pkg/data"
	"github.com/kerbaras/mangareader/pkg/services"
)

const latestPerTitle = 3

var statusOptions = []string{catalog.StatusOnGoing, catalog.StatusCompleted}

// CatalogScreen is the searchable, paginated title list. Each mount starts
// a fresh store refresh; results of an earlier mount are dropped.
type CatalogScreen struct {
	ctx     context.Context
	store   *catalog.Store
	reader  *services.Reader
	filters *catalog.Filters
	engine  *catalog.Engine
	log     *zap.Logger

	input   textinput.Model
	spinner spinner.Model
	help    help.Model
	keys    catalogKeyMap
	list    *components.MangaList

	view      catalog.View
	mount     int
	cancel    context.CancelFunc
	loading   bool
	err       error
	latestKey string

	width  int
	height int
}

func NewCatalogScreen(ctx context.Context, store *catalog.Store, reader *services.Reader, filters *catalog.Filters, log *zap.Logger) *CatalogScreen {
	if log == nil {
		log = zap.NewNop()
	}

	ti := textinput.New()
	ti.Placeholder = "Search titles..."
	ti.Prompt = "/ "
	ti.CharLimit = 100
	ti.Width = 40
	ti.SetValue(filters.Criteria().Query)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.StatusDownloading

	return &CatalogScreen{
		ctx:     ctx,
		store:   store,
		reader:  reader,
		filters: filters,
		engine:  catalog.NewEngine(store, filters),
		log:     log.Named("tui"),
		input:   ti,
		spinner: sp,
		help:    help.New(),
		keys:    newCatalogKeyMap(),
		list:    components.NewMangaList(),
	}
}

// Init mounts the screen and starts a refresh.
func (s *CatalogScreen) Init() tea.Cmd {
	s.Unmount()

	s.mount++
	ctx, cancel := context.WithCancel(s.ctx)
	s.cancel = cancel
	s.loading = true
	s.latestKey = ""

	return tea.Batch(s.spinner.Tick, refreshCatalog(ctx, s.store, s.mount))
}

// Unmount cancels the pending refresh; its result will be discarded.
func (s *CatalogScreen) Unmount() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mount++
	s.loading = false
}

// Typing reports whether keys go to the search input.
func (s *CatalogScreen) Typing() bool {
	return s.input.Focused()
}

func (s *CatalogScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.list.Width = width - 4
	s.list.Height = max(height-12, 3)
	s.help.Width = width
}

func (s *CatalogScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.SetSize(msg.Width, msg.Height)

	case spinner.TickMsg:
		if !s.loading {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case catalogLoadedMsg:
		if msg.mount != s.mount {
			return s, nil
		}
		s.loading = false
		if s.cancel != nil {
			s.cancel()
			s.cancel = nil
		}
		if msg.err != nil {
			if !errors.Is(msg.err, catalog.ErrStaleRefresh) {
				s.err = msg.err
			}
			return s, s.derive()
		}
		s.err = nil
		s.filters.SetGenreVocabulary(catalog.Vocabulary(s.store.Entries()))
		return s, s.derive()

	case latestLoadedMsg:
		if msg.key != s.latestKey {
			return s, nil
		}
		if msg.err != nil {
			s.log.Debug("latest chapters unavailable", zap.Error(msg.err))
			return s, nil
		}
		s.list.SetLatest(msg.latest)

	case tea.KeyMsg:
		if s.input.Focused() {
			return s, s.updateInput(msg)
		}
		return s, s.handleKey(msg)
	}

	return s, nil
}

func (s *CatalogScreen) updateInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		s.input.Blur()
		return nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	if s.input.Value() != s.filters.Criteria().Query {
		s.filters.SetQuery(s.input.Value())
		return tea.Batch(cmd, s.derive())
	}
	return cmd
}

func (s *CatalogScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, s.keys.Up):
		s.list.Prev()
	case key.Matches(msg, s.keys.Down):
		s.list.Next()
	case key.Matches(msg, s.keys.PrevPage):
		s.engine.PrevPage()
		return s.derive()
	case key.Matches(msg, s.keys.NextPage):
		s.engine.NextPage()
		return s.derive()
	case key.Matches(msg, s.keys.JumpPage):
		idx := int(msg.String()[0] - '1')
		if idx < len(s.view.Pages) {
			s.engine.SetPage(s.view.Pages[idx])
			return s.derive()
		}
	case key.Matches(msg, s.keys.Search):
		s.input.Focus()
		return textinput.Blink
	case key.Matches(msg, s.keys.Genre):
		s.filters.SetGenre(cycle(s.filters.Genres(), s.filters.Criteria().Genre, 1))
		return s.derive()
	case key.Matches(msg, s.keys.GenreRev):
		s.filters.SetGenre(cycle(s.filters.Genres(), s.filters.Criteria().Genre, -1))
		return s.derive()
	case key.Matches(msg, s.keys.Status):
		s.filters.SetStatus(cycle(statusOptions, s.filters.Criteria().Status, 1))
		return s.derive()
	case key.Matches(msg, s.keys.Clear):
		s.filters.Reset()
		s.input.SetValue("")
		return s.derive()
	case key.Matches(msg, s.keys.Refresh):
		return s.Init()
	case key.Matches(msg, s.keys.Open):
		if selected := s.list.Selected(); selected != nil {
			id := selected.Manga.ID
			return func() tea.Msg {
				return SwitchScreenMsg{Screen: "details", Data: id}
			}
		}
	}
	return nil
}

// derive recomputes the page and asks for the latest chapters of titles
// that were not on it before.
func (s *CatalogScreen) derive() tea.Cmd {
	s.view = s.engine.Derive()
	s.list.SetPage(s.view.Items)

	ids := s.list.IDs()
	if len(ids) == 0 || s.reader == nil {
		s.latestKey = ""
		return nil
	}
	k := strings.Join(ids, "\x00")
	if k == s.latestKey {
		return nil
	}
	s.latestKey = k
	return loadLatest(s.ctx, s.reader, k, ids)
}

func (s *CatalogScreen) View() string {
	if s.width == 0 {
		return "Loading..."
	}

	header := styles.TitleStyle.Render("📚 Manga Catalog")

	inputStyle := styles.InputStyle
	if s.input.Focused() {
		inputStyle = styles.FocusedInputStyle
	}
	criteria := s.filters.Criteria()
	filters := lipgloss.JoinHorizontal(lipgloss.Center,
		inputStyle.Render(s.input.View()),
		" ",
		styles.FilterStyle(criteria.Genre != "").Render("Genre: "+orAll(criteria.Genre)),
		styles.FilterStyle(criteria.Status != "").Render("Status: "+orAll(criteria.Status)),
	)

	var body string
	switch {
	case s.loading && s.view.Total == 0:
		body = fmt.Sprintf("%s Loading catalog...", s.spinner.View())
	case s.err != nil && s.view.Total == 0:
		body = styles.StatusError.Render("Could not load the catalog. Press r to retry.")
	default:
		s.list.Empty = "No titles match the current filters"
		if s.view.Total == 0 {
			s.list.Empty = "The catalog is empty"
		}
		body = s.summary() + "\n\n" + s.list.View() + s.pager()
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s\n%s", header, filters, body, styles.HelpStyle.Render(s.help.View(s.keys)))
}

func (s *CatalogScreen) summary() string {
	line := fmt.Sprintf("Showing %d of %d results (%d total) · Page %d / %d",
		len(s.view.Items), s.view.Filtered, s.view.Total, s.view.Page, s.view.TotalPages)
	line = styles.MutedStyle.Render(line)
	if s.loading {
		line = s.spinner.View() + " " + line
	}
	if s.err != nil {
		line += "\n" + styles.StatusError.Render("Refresh failed, showing earlier results")
	}
	return line
}

func (s *CatalogScreen) pager() string {
	if s.view.TotalPages <= 1 {
		return ""
	}

	parts := []string{}
	if s.view.HasPrev {
		parts = append(parts, styles.PageStyle.Render("‹"))
	}
	for i, p := range s.view.Pages {
		label := fmt.Sprintf("%d:%d", i+1, p)
		if p == s.view.Page {
			parts = append(parts, styles.CurrentPageStyle.Render(label))
		} else {
			parts = append(parts, styles.PageStyle.Render(label))
		}
	}
	if s.view.HasNext {
		parts = append(parts, styles.PageStyle.Render("›"))
	}
	return "\n" + lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func orAll(v string) string {
	if v == "" {
		return "All"
	}
	return v
}

// cycle steps through "" followed by options, wrapping around. An unknown
// current value restarts from "".
func cycle(options []string, current string, step int) string {
	all := append([]string{""}, options...)
	idx := 0
	for i, o := range all {
		if o == current {
			idx = i
			break
		}
	}
	idx = ((idx+step)%len(all) + len(all)) % len(all)
	return all[idx]
}

// Messages
type catalogLoadedMsg struct {
	mount int
	err   error
}

type latestLoadedMsg struct {
	key    string
	latest map[string][]data.Chapter
	err    error
}

// Commands
func refreshCatalog(ctx context.Context, store *catalog.Store, mount int) tea.Cmd {
	return func() tea.Msg {
		return catalogLoadedMsg{mount: mount, err: store.Refresh(ctx)}
	}
}

func loadLatest(ctx context.Context, reader *services.Reader, key string, ids []string) tea.Cmd {
	return func() tea.Msg {
		latest, err := reader.LatestChapters(ctx, ids, latestPerTitle)
		return latestLoadedMsg{key: key, latest: latest, err: err}
	}
}
