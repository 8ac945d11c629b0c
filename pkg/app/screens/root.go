package screens

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/kerbaras/mangareader/pkg/app/components"
	"github.com/kerbaras/mangareader/pkg/catalog"
	"github.com/kerbaras/mangareader/pkg/services"
)

type screenType int

const (
	catalogView screenType = iota
	detailsView
	readerView
)

// SwitchScreenMsg asks the root to show another screen. Data is the title id
// for "details" and a ChapterRef for "reader".
type SwitchScreenMsg struct {
	Screen string
	Data   interface{}
}

type RootScreen struct {
	ctx        context.Context
	controller *services.Controller
	filters    *catalog.Filters
	log        *zap.Logger

	currentView screenType
	catalog     *CatalogScreen
	details     *DetailsScreen
	reader      *ReaderScreen
	progress    *components.ProgressTracker

	width  int
	height int
}

func NewRootScreen(ctx context.Context, controller *services.Controller, log *zap.Logger) *RootScreen {
	if log == nil {
		log = zap.NewNop()
	}
	filters := catalog.NewFilters()

	return &RootScreen{
		ctx:         ctx,
		controller:  controller,
		filters:     filters,
		log:         log,
		currentView: catalogView,
		catalog:     NewCatalogScreen(ctx, controller.Store, controller.Reader, filters, log),
		progress:    components.NewProgressTracker(80),
	}
}

func (r *RootScreen) Init() tea.Cmd {
	return tea.Batch(r.catalog.Init(), r.listenForProgress)
}

func (r *RootScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.width = msg.Width
		r.height = msg.Height
		r.catalog.SetSize(msg.Width, msg.Height)
		if r.details != nil {
			r.details.SetSize(msg.Width, msg.Height)
		}
		if r.reader != nil {
			r.reader.SetSize(msg.Width, msg.Height)
		}
		return r, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return r, tea.Quit
		case "q":
			if r.currentView != catalogView || !r.catalog.Typing() {
				return r, tea.Quit
			}
		}

	case services.ExportProgress:
		r.progress.Update(msg)
		return r, r.listenForProgress

	case SwitchScreenMsg:
		return r, r.switchTo(msg)
	}

	switch r.currentView {
	case catalogView:
		_, cmd = r.catalog.Update(msg)
	case detailsView:
		if r.details != nil {
			_, cmd = r.details.Update(msg)
		}
	case readerView:
		if r.reader != nil {
			_, cmd = r.reader.Update(msg)
		}
	}

	return r, cmd
}

func (r *RootScreen) switchTo(msg SwitchScreenMsg) tea.Cmd {
	if r.currentView == catalogView && msg.Screen != "catalog" {
		r.catalog.Unmount()
	}

	switch msg.Screen {
	case "catalog":
		r.currentView = catalogView
		return r.catalog.Init()

	case "details":
		mangaID, ok := msg.Data.(string)
		if !ok {
			return nil
		}
		r.currentView = detailsView
		// Coming back from the reader keeps the loaded details and cursor.
		if r.details != nil && r.details.MangaID() == mangaID {
			return nil
		}
		r.details = NewDetailsScreen(r.ctx, r.controller.Reader, mangaID)
		r.details.SetSize(r.width, r.height)
		return r.details.Init()

	case "reader":
		ref, ok := msg.Data.(ChapterRef)
		if !ok {
			return nil
		}
		r.currentView = readerView
		r.reader = NewReaderScreen(r.ctx, r.controller.Reader, r.controller.Exporter, r.progress, ref)
		r.reader.SetSize(r.width, r.height)
		return r.reader.Init()
	}
	return nil
}

func (r *RootScreen) View() string {
	switch r.currentView {
	case detailsView:
		if r.details != nil {
			return r.details.View()
		}
	case readerView:
		if r.reader != nil {
			return r.reader.View()
		}
	}
	return r.catalog.View()
}

// listenForProgress waits for the next export update. It stops once the
// exporter is closed.
func (r *RootScreen) listenForProgress() tea.Msg {
	if r.controller.Exporter == nil {
		return nil
	}
	progress, ok := <-r.controller.Exporter.Progress()
	if !ok {
		return nil
	}
	return progress
}
