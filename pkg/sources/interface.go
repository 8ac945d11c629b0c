package sources

import (
	"context"

	"github.com/kerbaras/mangareader/pkg/data"
)

type Order = data.Order

const (
	Ascending  = data.Ascending
	Descending = data.Descending
)

// Source is the read-only view over the manga, chapters and chapter_images
// tables. Implementations return a nil *data.Manga (and no error) when the
// title does not exist.
type Source interface {
	// ListManga returns every title ordered by created_at, newest first.
	ListManga(ctx context.Context) ([]data.Manga, error)
	GetManga(ctx context.Context, id string) (*data.Manga, error)
	// ListChapters returns the chapters of one title ordered by chapter_number.
	ListChapters(ctx context.Context, mangaID string, order Order) ([]data.Chapter, error)
	// ListChaptersFor returns the chapters of several titles, unordered.
	ListChaptersFor(ctx context.Context, mangaIDs []string) ([]data.Chapter, error)
	// ListChapterImages returns the pages of a chapter ordered by page_number.
	ListChapterImages(ctx context.Context, chapterID string) ([]data.ChapterImage, error)
}
