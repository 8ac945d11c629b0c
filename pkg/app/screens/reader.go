package screens

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kerbaras/mangareader/pkg/app/components"
	"github.com/kerbaras/mangareader/pkg/app/styles"
	"github.com/kerbaras/mangareader/pkg/data"
	"github.com/kerbaras/mangareader/pkg/services"
)

// ChapterRef addresses one chapter of one title.
type ChapterRef struct {
	MangaID string
	Number  data.ChapterNumber
}

// ReaderScreen lists a chapter's page images in reading order.
type ReaderScreen struct {
	ctx      context.Context
	reader   *services.Reader
	exporter *services.Exporter
	ref      ChapterRef

	chapter   *services.ChapterView
	loading   bool
	notFound  bool
	exporting bool
	err       error
	exportErr error
	saved     string

	pages    viewport.Model
	progress *components.ProgressTracker
	help     help.Model
	keys     readerKeyMap

	width  int
	height int
}

func NewReaderScreen(ctx context.Context, reader *services.Reader, exporter *services.Exporter, progress *components.ProgressTracker, ref ChapterRef) *ReaderScreen {
	return &ReaderScreen{
		ctx:      ctx,
		reader:   reader,
		exporter: exporter,
		ref:      ref,
		pages:    viewport.New(80, 10),
		progress: progress,
		help:     help.New(),
		keys:     newReaderKeyMap(),
	}
}

func (s *ReaderScreen) Ref() ChapterRef {
	return s.ref
}

func (s *ReaderScreen) Init() tea.Cmd {
	s.loading = true
	return loadChapter(s.ctx, s.reader, s.ref)
}

func (s *ReaderScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.pages.Width = width - 4
	s.pages.Height = max(height-14, 3)
	s.help.Width = width
	s.progress.SetWidth(width - 4)
}

func (s *ReaderScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.SetSize(msg.Width, msg.Height)

	case chapterLoadedMsg:
		if msg.ref != s.ref {
			return s, nil
		}
		s.loading = false
		s.chapter = msg.view
		s.notFound = errors.Is(msg.err, services.ErrChapterNotFound) || errors.Is(msg.err, services.ErrMangaNotFound)
		s.err = msg.err
		if s.chapter != nil {
			s.pages.SetContent(renderPages(s.chapter.Images))
			s.pages.GotoTop()
		}

	case exportDoneMsg:
		if msg.ref != s.ref {
			return s, nil
		}
		s.exporting = false
		s.exportErr = msg.err
		s.saved = msg.path

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keys.Next):
			if s.chapter != nil && s.chapter.Next != nil {
				return s, s.open(s.chapter.Next.Number)
			}
		case key.Matches(msg, s.keys.Prev):
			if s.chapter != nil && s.chapter.Prev != nil {
				return s, s.open(s.chapter.Prev.Number)
			}
		case key.Matches(msg, s.keys.Export):
			if s.chapter != nil && !s.exporting && s.exporter != nil {
				s.exporting = true
				s.exportErr = nil
				s.saved = ""
				return s, exportChapter(s.ctx, s.exporter, s.ref)
			}
		case key.Matches(msg, s.keys.Back):
			id := s.ref.MangaID
			return s, func() tea.Msg {
				return SwitchScreenMsg{Screen: "details", Data: id}
			}
		default:
			var cmd tea.Cmd
			s.pages, cmd = s.pages.Update(msg)
			return s, cmd
		}
	}

	return s, nil
}

func (s *ReaderScreen) open(number data.ChapterNumber) tea.Cmd {
	ref := ChapterRef{MangaID: s.ref.MangaID, Number: number}
	return func() tea.Msg {
		return SwitchScreenMsg{Screen: "reader", Data: ref}
	}
}

func (s *ReaderScreen) View() string {
	if s.width == 0 || s.loading {
		return "Loading..."
	}

	helpView := styles.HelpStyle.Render(s.help.View(s.keys))

	if s.notFound {
		return fmt.Sprintf("%s\n\n%s\n%s",
			styles.TitleStyle.Render("Chapter not found"),
			styles.MutedStyle.Render(fmt.Sprintf("Chapter %s is not available for this title.", s.ref.Number)),
			helpView)
	}
	if s.err != nil {
		return fmt.Sprintf("%s\n\n%s\n%s",
			styles.TitleStyle.Render("📄 Reader"),
			styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err)),
			helpView)
	}

	view := s.chapter
	title := fmt.Sprintf("📄 %s", chapterHeading(view))
	header := styles.TitleStyle.Render(title)

	nav := []string{}
	if view.Prev != nil {
		nav = append(nav, styles.MutedStyle.Render(fmt.Sprintf("‹ p: Ch. %s", view.Prev.Number)))
	}
	nav = append(nav, styles.SubtitleStyle.Render(fmt.Sprintf("%d pages", len(view.Images))))
	if view.Next != nil {
		nav = append(nav, styles.MutedStyle.Render(fmt.Sprintf("n: Ch. %s ›", view.Next.Number)))
	}

	var status string
	switch {
	case s.exporting && s.progress.HasActive():
		status = s.progress.View()
	case s.exporting:
		status = styles.StatusDownloading.Render("Exporting...")
	case s.exportErr != nil:
		status = styles.StatusError.Render(fmt.Sprintf("Export failed: %s", s.exportErr))
	case s.saved != "":
		status = styles.StatusCompleted.Render("Saved " + s.saved)
	}

	return fmt.Sprintf("%s\n%s\n\n%s\n%s\n%s",
		header,
		strings.Join(nav, "   "),
		s.pages.View(),
		status,
		helpView,
	)
}

func chapterHeading(view *services.ChapterView) string {
	title := fmt.Sprintf("%s · Chapter %s", view.Manga.Title, view.Chapter.Number)
	if view.Chapter.Title != "" {
		title += ": " + view.Chapter.Title
	}
	return title
}

func renderPages(images []data.ChapterImage) string {
	if len(images) == 0 {
		return styles.MutedStyle.Render("This chapter has no pages")
	}

	var b strings.Builder
	for i, img := range images {
		b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("%3d  ", i+1)))
		b.WriteString(styles.TextStyle.Render(img.ImageURL))
		b.WriteString("\n")
	}
	return b.String()
}

// Messages
type chapterLoadedMsg struct {
	ref  ChapterRef
	view *services.ChapterView
	err  error
}

type exportDoneMsg struct {
	ref  ChapterRef
	path string
	err  error
}

// Commands
func loadChapter(ctx context.Context, reader *services.Reader, ref ChapterRef) tea.Cmd {
	return func() tea.Msg {
		view, err := reader.Chapter(ctx, ref.MangaID, ref.Number)
		return chapterLoadedMsg{ref: ref, view: view, err: err}
	}
}

func exportChapter(ctx context.Context, exporter *services.Exporter, ref ChapterRef) tea.Cmd {
	return func() tea.Msg {
		path, err := exporter.ExportChapter(ctx, ref.MangaID, ref.Number)
		return exportDoneMsg{ref: ref, path: path, err: err}
	}
}
