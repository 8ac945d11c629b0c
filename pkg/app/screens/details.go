package screens

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kerbaras/mangareader/pkg/app/components"
	"github.com/kerbaras/mangareader/pkg/app/styles"
	"github.com/kerbaras/mangareader/pkg/services"
)

const visibleChapters = 10

type DetailsScreen struct {
	ctx     context.Context
	reader  *services.Reader
	mangaID string

	details         *services.Details
	selectedChapter int
	loading         bool
	notFound        bool
	err             error

	help help.Model
	keys detailsKeyMap

	width  int
	height int
}

func NewDetailsScreen(ctx context.Context, reader *services.Reader, mangaID string) *DetailsScreen {
	return &DetailsScreen{
		ctx:     ctx,
		reader:  reader,
		mangaID: mangaID,
		help:    help.New(),
		keys:    newDetailsKeyMap(),
	}
}

func (s *DetailsScreen) MangaID() string {
	return s.mangaID
}

func (s *DetailsScreen) Init() tea.Cmd {
	s.loading = true
	return loadDetails(s.ctx, s.reader, s.mangaID)
}

func (s *DetailsScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.help.Width = width
}

func (s *DetailsScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.SetSize(msg.Width, msg.Height)

	case detailsLoadedMsg:
		if msg.mangaID != s.mangaID {
			return s, nil
		}
		s.loading = false
		s.details = msg.details
		s.notFound = errors.Is(msg.err, services.ErrMangaNotFound)
		s.err = msg.err
		s.selectedChapter = 0

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keys.Up):
			if s.selectedChapter > 0 {
				s.selectedChapter--
			}
		case key.Matches(msg, s.keys.Down):
			if s.details != nil && s.selectedChapter < len(s.details.Chapters)-1 {
				s.selectedChapter++
			}
		case key.Matches(msg, s.keys.Read):
			if s.details != nil && len(s.details.Chapters) > 0 {
				ref := ChapterRef{MangaID: s.mangaID, Number: s.details.Chapters[s.selectedChapter].Number}
				return s, func() tea.Msg {
					return SwitchScreenMsg{Screen: "reader", Data: ref}
				}
			}
		case key.Matches(msg, s.keys.Back):
			return s, func() tea.Msg {
				return SwitchScreenMsg{Screen: "catalog"}
			}
		}
	}

	return s, nil
}

func (s *DetailsScreen) View() string {
	if s.width == 0 || s.loading {
		return "Loading..."
	}

	helpView := styles.HelpStyle.Render(s.help.View(s.keys))

	if s.notFound {
		return fmt.Sprintf("%s\n\n%s\n%s",
			styles.TitleStyle.Render("Title not found"),
			styles.MutedStyle.Render("It may have been removed from the catalog."),
			helpView)
	}
	if s.err != nil {
		return fmt.Sprintf("%s\n\n%s\n%s",
			styles.TitleStyle.Render("📖 Details"),
			styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err)),
			helpView)
	}

	header := styles.TitleStyle.Render(fmt.Sprintf("📖 %s", s.details.Manga.Title))

	return fmt.Sprintf("%s\n%s\n%s\n%s",
		header,
		s.renderMangaInfo(),
		s.renderChaptersList(),
		helpView,
	)
}

func (s *DetailsScreen) renderMangaInfo() string {
	manga := s.details.Manga

	lines := []string{}
	if manga.Alternative != "" {
		lines = append(lines, styles.SubtitleStyle.Render(manga.Alternative))
	}

	field := func(label, value string) {
		if value != "" {
			lines = append(lines, styles.MutedStyle.Render(label+": ")+styles.TextStyle.Render(value))
		}
	}
	field("Author", manga.Author)
	field("Artist", manga.Artist)
	field("Type", manga.Type)
	field("Released", manga.ReleaseYear)
	if manga.Status != "" {
		lines = append(lines, styles.MutedStyle.Render("Status: ")+styles.StatusStyle(manga.Status).Render(manga.Status))
	}
	field("Rating", manga.RatingValue())
	field("Rank", manga.RankValue())

	if genres := manga.GenreList(); len(genres) > 0 {
		chips := make([]string, len(genres))
		for i, g := range genres {
			chips[i] = styles.GenreStyle.Render("#" + g)
		}
		lines = append(lines, strings.Join(chips, " "))
	}

	if desc := components.Truncate(manga.Description, 300); desc != "" {
		lines = append(lines, "", styles.TextStyle.Render(desc))
	}

	return styles.CardStyle.Width(s.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (s *DetailsScreen) renderChaptersList() string {
	chapters := s.details.Chapters
	if len(chapters) == 0 {
		return styles.MutedStyle.Render("No chapters available")
	}

	var b strings.Builder
	b.WriteString(styles.SubtitleStyle.Render(fmt.Sprintf("Chapters (%d total):", len(chapters))))
	b.WriteString("\n\n")

	start, end := 0, len(chapters)
	if end > visibleChapters {
		start = max(s.selectedChapter-visibleChapters/2, 0)
		end = start + visibleChapters
		if end > len(chapters) {
			end = len(chapters)
			start = end - visibleChapters
		}
	}

	for i := start; i < end; i++ {
		ch := chapters[i]
		line := fmt.Sprintf("Ch. %s", ch.Number)
		if ch.Title != "" {
			line = fmt.Sprintf("%s: %s", line, ch.Title)
		}
		if ch.PublishedDate != "" {
			line += styles.MutedStyle.Render("  " + ch.PublishedDate)
		}

		if i == s.selectedChapter {
			b.WriteString(styles.SelectedStyle.Render("› " + line))
		} else {
			b.WriteString(styles.TextStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	if len(chapters) > visibleChapters {
		b.WriteString("\n")
		b.WriteString(styles.MutedStyle.Render(
			fmt.Sprintf("Showing %d-%d of %d chapters", start+1, end, len(chapters)),
		))
	}

	return b.String()
}

// Messages
type detailsLoadedMsg struct {
	mangaID string
	details *services.Details
	err     error
}

// Commands
func loadDetails(ctx context.Context, reader *services.Reader, mangaID string) tea.Cmd {
	return func() tea.Msg {
		details, err := reader.Details(ctx, mangaID)
		return detailsLoadedMsg{mangaID: mangaID, details: details, err: err}
	}
}
