package services

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kerbaras/mangareader/pkg/data"
	"github.com/kerbaras/mangareader/pkg/sources"
)

const mirrorWorkers = 4

// MirrorTarget receives the copied rows.
type MirrorTarget interface {
	SaveManga(ctx context.Context, m *data.Manga) error
	SaveChapter(ctx context.Context, c *data.Chapter) error
	SaveChapterImage(ctx context.Context, img *data.ChapterImage) error
}

type MirrorStats struct {
	Manga    int
	Chapters int
	Images   int
}

// Mirror copies every title, chapter and page reference from src into dst so
// the catalog can be served offline. Titles are copied by a small worker pool;
// the first failure stops the copy.
func Mirror(ctx context.Context, src sources.Source, dst MirrorTarget, log *zap.Logger) (MirrorStats, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("mirror")

	mangas, err := src.ListManga(ctx)
	if err != nil {
		return MirrorStats{}, fmt.Errorf("list manga: %w", err)
	}

	var chapters, images atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(mirrorWorkers)
	for i := range mangas {
		m := &mangas[i]
		g.Go(func() error {
			if err := dst.SaveManga(gctx, m); err != nil {
				return err
			}

			list, err := src.ListChapters(gctx, m.ID, sources.Ascending)
			if err != nil {
				return fmt.Errorf("list chapters of %s: %w", m.ID, err)
			}
			for j := range list {
				c := &list[j]
				if err := dst.SaveChapter(gctx, c); err != nil {
					return err
				}
				pages, err := src.ListChapterImages(gctx, c.ID)
				if err != nil {
					return fmt.Errorf("list images of chapter %s: %w", c.ID, err)
				}
				for k := range pages {
					if err := dst.SaveChapterImage(gctx, &pages[k]); err != nil {
						return err
					}
				}
				images.Add(int64(len(pages)))
			}
			chapters.Add(int64(len(list)))

			log.Debug("title mirrored", zap.String("manga_id", m.ID), zap.Int("chapters", len(list)))
			return nil
		})
	}

	stats := MirrorStats{Manga: len(mangas)}
	err = g.Wait()
	stats.Chapters = int(chapters.Load())
	stats.Images = int(images.Load())
	if err != nil {
		log.Error("mirror failed", zap.Error(err))
		return stats, err
	}

	log.Info("mirror complete",
		zap.Int("manga", stats.Manga),
		zap.Int("chapters", stats.Chapters),
		zap.Int("images", stats.Images))
	return stats, nil
}
