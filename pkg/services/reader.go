package services

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kerbaras/mangareader/pkg/data"
	"github.com/kerbaras/mangareader/pkg/sources"
)

var (
	ErrMangaNotFound   = fmt.Errorf("manga %w", data.ErrNotFound)
	ErrChapterNotFound = fmt.Errorf("chapter %w", data.ErrNotFound)
)

// Details is a title with its chapters, newest first.
type Details struct {
	Manga    data.Manga     `json:"manga"`
	Chapters []data.Chapter `json:"chapters"`
}

// ChapterView is everything the reader screen shows for one chapter. Prev is
// the chapter before this one, Next the one after; either may be nil.
type ChapterView struct {
	Manga   data.Manga          `json:"manga"`
	Chapter data.Chapter        `json:"chapter"`
	Images  []data.ChapterImage `json:"images"`
	Prev    *data.Chapter       `json:"prev,omitempty"`
	Next    *data.Chapter       `json:"next,omitempty"`
}

// Reader serves the per-title and per-chapter views.
type Reader struct {
	source sources.Source
	log    *zap.Logger
}

func NewReader(source sources.Source, log *zap.Logger) *Reader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reader{source: source, log: log.Named("reader")}
}

// Details fetches a title and its chapters in parallel.
func (r *Reader) Details(ctx context.Context, mangaID string) (*Details, error) {
	var (
		manga    *data.Manga
		chapters []data.Chapter
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		manga, err = r.source.GetManga(gctx, mangaID)
		if err != nil {
			return fmt.Errorf("get manga %s: %w", mangaID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		chapters, err = r.source.ListChapters(gctx, mangaID, sources.Descending)
		if err != nil {
			return fmt.Errorf("list chapters of %s: %w", mangaID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		r.log.Error("details fetch failed", zap.String("manga_id", mangaID), zap.Error(err))
		return nil, err
	}

	if manga == nil {
		return nil, fmt.Errorf("%w: %s", ErrMangaNotFound, mangaID)
	}
	if chapters == nil {
		chapters = []data.Chapter{}
	}
	return &Details{Manga: *manga, Chapters: chapters}, nil
}

// Chapter resolves the chapter with the exact key number and loads its pages.
func (r *Reader) Chapter(ctx context.Context, mangaID string, number data.ChapterNumber) (*ChapterView, error) {
	details, err := r.Details(ctx, mangaID)
	if err != nil {
		return nil, err
	}

	idx := slices.IndexFunc(details.Chapters, func(c data.Chapter) bool {
		return c.Number == number
	})
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s chapter %s", ErrChapterNotFound, mangaID, number)
	}

	chapter := details.Chapters[idx]
	images, err := r.source.ListChapterImages(ctx, chapter.ID)
	if err != nil {
		r.log.Error("chapter images fetch failed", zap.String("chapter_id", chapter.ID), zap.Error(err))
		return nil, fmt.Errorf("list images of chapter %s: %w", chapter.ID, err)
	}
	if images == nil {
		images = []data.ChapterImage{}
	}

	view := &ChapterView{
		Manga:   details.Manga,
		Chapter: chapter,
		Images:  images,
	}
	// Chapters are newest first.
	if idx+1 < len(details.Chapters) {
		view.Prev = &details.Chapters[idx+1]
	}
	if idx > 0 {
		view.Next = &details.Chapters[idx-1]
	}
	return view, nil
}

// LatestChapters returns up to n chapters for each of mangaIDs, ordered by
// the number in the chapter title, highest first. Titles without chapters
// are absent from the result.
func (r *Reader) LatestChapters(ctx context.Context, mangaIDs []string, n int) (map[string][]data.Chapter, error) {
	latest := make(map[string][]data.Chapter)
	if len(mangaIDs) == 0 || n <= 0 {
		return latest, nil
	}

	chapters, err := r.source.ListChaptersFor(ctx, mangaIDs)
	if err != nil {
		r.log.Warn("latest chapters fetch failed", zap.Int("titles", len(mangaIDs)), zap.Error(err))
		return nil, fmt.Errorf("list latest chapters: %w", err)
	}

	for _, c := range chapters {
		latest[c.MangaID] = append(latest[c.MangaID], c)
	}
	for id, list := range latest {
		slices.SortStableFunc(list, func(a, b data.Chapter) int {
			return b.TitleNumber() - a.TitleNumber()
		})
		if len(list) > n {
			list = list[:n]
		}
		latest[id] = list
	}
	return latest, nil
}
