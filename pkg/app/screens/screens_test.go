package screens

import (
	"context"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kerbaras/mangareader/pkg/config"
	"github.com/kerbaras/mangareader/pkg/data"
	"github.com/kerbaras/mangareader/pkg/services"
	"github.com/kerbaras/mangareader/pkg/sources"
)

type mockSource struct {
	listMangaFunc         func(ctx context.Context) ([]data.Manga, error)
	getMangaFunc          func(ctx context.Context, id string) (*data.Manga, error)
	listChaptersFunc      func(ctx context.Context, mangaID string, order sources.Order) ([]data.Chapter, error)
	listChaptersForFunc   func(ctx context.Context, mangaIDs []string) ([]data.Chapter, error)
	listChapterImagesFunc func(ctx context.Context, chapterID string) ([]data.ChapterImage, error)
}

func (m *mockSource) ListManga(ctx context.Context) ([]data.Manga, error) {
	if m.listMangaFunc != nil {
		return m.listMangaFunc(ctx)
	}
	return nil, nil
}

func (m *mockSource) GetManga(ctx context.Context, id string) (*data.Manga, error) {
	if m.getMangaFunc != nil {
		return m.getMangaFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockSource) ListChapters(ctx context.Context, mangaID string, order sources.Order) ([]data.Chapter, error) {
	if m.listChaptersFunc != nil {
		return m.listChaptersFunc(ctx, mangaID, order)
	}
	return nil, nil
}

func (m *mockSource) ListChaptersFor(ctx context.Context, mangaIDs []string) ([]data.Chapter, error) {
	if m.listChaptersForFunc != nil {
		return m.listChaptersForFunc(ctx, mangaIDs)
	}
	return nil, nil
}

func (m *mockSource) ListChapterImages(ctx context.Context, chapterID string) ([]data.ChapterImage, error) {
	if m.listChapterImagesFunc != nil {
		return m.listChapterImagesFunc(ctx, chapterID)
	}
	return nil, nil
}

// catalogEntries builds n titles; even ones are "Action, Drama"/OnGoing and
// odd ones "Comedy"/Completed.
func catalogEntries(n int) []data.Manga {
	entries := make([]data.Manga, n)
	for i := range entries {
		entries[i] = data.Manga{
			ID:     fmt.Sprintf("m-%02d", i),
			Title:  fmt.Sprintf("Title %02d", i),
			Genres: "Action, Drama",
			Status: "OnGoing",
		}
		if i%2 == 1 {
			entries[i].Genres = "Comedy"
			entries[i].Status = "Completed"
		}
	}
	return entries
}

// librarySource serves the catalog plus one fully populated title, "m-00",
// with chapters 1, 2 and 10 of two pages each.
func librarySource(imageBase string) *mockSource {
	entries := catalogEntries(45)
	chapters := []data.Chapter{
		{ID: "ch-10", MangaID: "m-00", Number: "10", Title: "Chapter 10"},
		{ID: "ch-2", MangaID: "m-00", Number: "2", Title: "Chapter 2"},
		{ID: "ch-1", MangaID: "m-00", Number: "1", Title: "Chapter 1"},
	}

	return &mockSource{
		listMangaFunc: func(ctx context.Context) ([]data.Manga, error) {
			return entries, nil
		},
		getMangaFunc: func(ctx context.Context, id string) (*data.Manga, error) {
			for _, m := range entries {
				if m.ID == id {
					m.Description = "A test title."
					return &m, nil
				}
			}
			return nil, nil
		},
		listChaptersFunc: func(ctx context.Context, mangaID string, order sources.Order) ([]data.Chapter, error) {
			if mangaID != "m-00" {
				return []data.Chapter{}, nil
			}
			return chapters, nil
		},
		listChaptersForFunc: func(ctx context.Context, mangaIDs []string) ([]data.Chapter, error) {
			for _, id := range mangaIDs {
				if id == "m-00" {
					return chapters, nil
				}
			}
			return []data.Chapter{}, nil
		},
		listChapterImagesFunc: func(ctx context.Context, chapterID string) ([]data.ChapterImage, error) {
			return []data.ChapterImage{
				{ID: chapterID + "-p1", ChapterID: chapterID, PageNumber: 1, ImageURL: imageBase + "/" + chapterID + "/1.png"},
				{ID: chapterID + "-p2", ChapterID: chapterID, PageNumber: 2, ImageURL: imageBase + "/" + chapterID + "/2.png"},
			}, nil
		},
	}
}

func newTestController(t *testing.T, source sources.Source) *services.Controller {
	t.Helper()
	controller := services.NewControllerWithSource(source, config.ExportConfig{Dir: t.TempDir()}, nil, nil)
	t.Cleanup(func() { controller.Close() })
	return controller
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// collect runs cmd and flattens batches into their messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// settle feeds the data-loading messages produced by cmd back into model
// until no more arrive. Timer-driven messages are dropped.
func settle(model tea.Model, cmd tea.Cmd) {
	for _, msg := range collect(cmd) {
		switch msg.(type) {
		case catalogLoadedMsg, latestLoadedMsg, detailsLoadedMsg, chapterLoadedMsg, exportDoneMsg, SwitchScreenMsg:
			_, next := model.Update(msg)
			settle(model, next)
		}
	}
}

// switchMsg returns the SwitchScreenMsg produced by cmd, if any.
func switchMsg(t *testing.T, cmd tea.Cmd) SwitchScreenMsg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	raw := cmd()
	msg, ok := raw.(SwitchScreenMsg)
	if !ok {
		t.Fatalf("expected SwitchScreenMsg, got %T", raw)
	}
	return msg
}
