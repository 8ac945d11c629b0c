package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kerbaras/mangareader/pkg/config"
	"github.com/kerbaras/mangareader/pkg/data"
	"github.com/kerbaras/mangareader/pkg/integrations"
)

const (
	StatusDownloading = "downloading"
	StatusProcessing  = "processing"
	StatusComplete    = "complete"
	StatusError       = "error"

	maxConcurrentExports = 3
)

// ErrExporterClosed is returned by exports started after Close.
var ErrExporterClosed = errors.New("exporter closed")

// ExportProgress represents the progress of an export operation
type ExportProgress struct {
	MangaID       string
	ChapterID     string
	ChapterNumber data.ChapterNumber
	CurrentPage   int
	TotalPages    int
	Status        string
	Path          string
	Error         error
}

// Exporter downloads chapter pages and packs them into EPUB files.
type Exporter struct {
	reader     *Reader
	client     *http.Client
	outputDir  string
	processor  *integrations.PageProcessor
	newBuilder func(outputDir string) integrations.Builder
	log        *zap.Logger

	rateLimiter  *time.Ticker
	progressChan chan ExportProgress

	// Close cancels done and waits for running exports before closing
	// progressChan, so sends never race the close.
	mu        sync.Mutex
	closed    bool
	running   sync.WaitGroup
	done      context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func NewExporter(reader *Reader, cfg config.ExportConfig, log *zap.Logger) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Exporter{
		reader:    reader,
		client:    http.DefaultClient,
		outputDir: cfg.Dir,
		processor: integrations.NewPageProcessor(cfg.MaxWidth),
		newBuilder: func(outputDir string) integrations.Builder {
			return integrations.NewEPubBuilder(outputDir)
		},
		log:          log.Named("exporter"),
		progressChan: make(chan ExportProgress, 100),
	}
	e.done, e.cancel = context.WithCancel(context.Background())
	if cfg.Rate > 0 {
		e.rateLimiter = time.NewTicker(cfg.Rate)
	}
	return e
}

// Progress returns the channel for receiving export progress updates
func (e *Exporter) Progress() <-chan ExportProgress {
	return e.progressChan
}

// ExportChapters exports several chapters of one title, a few at a time. It
// returns the paths written and the first error met; the other chapters are
// still attempted.
func (e *Exporter) ExportChapters(ctx context.Context, mangaID string, numbers []data.ChapterNumber) ([]string, error) {
	paths := make([]string, len(numbers))

	var g errgroup.Group
	g.SetLimit(maxConcurrentExports)
	for i, number := range numbers {
		g.Go(func() error {
			path, err := e.ExportChapter(ctx, mangaID, number)
			if err != nil {
				return fmt.Errorf("chapter %s: %w", number, err)
			}
			paths[i] = path
			return nil
		})
	}
	err := g.Wait()

	written := paths[:0]
	for _, p := range paths {
		if p != "" {
			written = append(written, p)
		}
	}
	return written, err
}

// ExportChapter writes one chapter to "<title> - Chapter <n>.epub" in the
// output directory and returns the file path.
func (e *Exporter) ExportChapter(ctx context.Context, mangaID string, number data.ChapterNumber) (string, error) {
	if !e.begin() {
		return "", ErrExporterClosed
	}
	defer e.running.Done()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(e.done, cancel)
	defer stop()

	view, err := e.reader.Chapter(ctx, mangaID, number)
	if err != nil {
		return "", err
	}

	path, err := e.export(ctx, view)
	if err != nil {
		e.log.Error("export failed",
			zap.String("manga_id", mangaID),
			zap.String("chapter", number.String()),
			zap.Error(err))
		e.sendProgress(ExportProgress{
			MangaID:       mangaID,
			ChapterID:     view.Chapter.ID,
			ChapterNumber: number,
			Status:        StatusError,
			Error:         err,
		})
		return "", err
	}
	return path, nil
}

func (e *Exporter) export(ctx context.Context, view *ChapterView) (string, error) {
	manga, chapter := view.Manga, view.Chapter
	pages := view.Images
	if len(pages) == 0 {
		return "", errors.New("no pages found for chapter")
	}

	progress := ExportProgress{
		MangaID:       manga.ID,
		ChapterID:     chapter.ID,
		ChapterNumber: chapter.Number,
		TotalPages:    len(pages),
		Status:        StatusDownloading,
	}
	e.sendProgress(progress)

	builder := e.newBuilder(e.outputDir)
	defer builder.Close()
	if err := builder.Init(&manga, &chapter); err != nil {
		return "", fmt.Errorf("failed to initialize EPUB builder: %w", err)
	}

	// The cover is optional.
	if manga.ImageURL != "" {
		if err := e.wait(ctx); err != nil {
			return "", err
		}
		cover, err := e.download(ctx, manga.ImageURL)
		if err == nil {
			err = builder.SetCover(integrations.CoverData{Content: cover.Content, ContentType: cover.ContentType})
		}
		if err != nil {
			e.log.Warn("skipping cover", zap.String("manga_id", manga.ID), zap.Error(err))
		}
	}

	for i, page := range pages {
		if err := e.wait(ctx); err != nil {
			return "", err
		}

		progress.CurrentPage = i + 1
		e.sendProgress(progress)

		image, err := e.download(ctx, page.ImageURL)
		if err != nil {
			return "", fmt.Errorf("failed to download page %d: %w", page.PageNumber, err)
		}
		image.Index = i

		image, err = e.processor.Process(image)
		if err != nil {
			return "", err
		}
		if err := builder.Next(image); err != nil {
			return "", fmt.Errorf("failed to add page %d to EPUB: %w", page.PageNumber, err)
		}
	}

	progress.Status = StatusProcessing
	e.sendProgress(progress)

	path, err := builder.Done()
	if err != nil {
		return "", fmt.Errorf("failed to finalize EPUB: %w", err)
	}

	progress.Status = StatusComplete
	progress.Path = path
	e.sendProgress(progress)

	e.log.Info("chapter exported",
		zap.String("manga_id", manga.ID),
		zap.String("chapter", chapter.Number.String()),
		zap.Int("pages", len(pages)),
		zap.String("path", path))
	return path, nil
}

// begin registers a running export unless the exporter is closed.
func (e *Exporter) begin() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	e.running.Add(1)
	return true
}

// wait blocks for the next rate limiter tick.
func (e *Exporter) wait(ctx context.Context) error {
	if e.rateLimiter == nil {
		return ctx.Err()
	}
	select {
	case <-e.rateLimiter.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// download fetches one image into memory
func (e *Exporter) download(ctx context.Context, url string) (integrations.ImageData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return integrations.ImageData{}, err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return integrations.ImageData{}, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return integrations.ImageData{}, fmt.Errorf("bad status: %s", resp.Status)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return integrations.ImageData{}, fmt.Errorf("failed to read image content: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(content)
	}

	return integrations.ImageData{Content: content, ContentType: contentType}, nil
}

// sendProgress sends a progress update (non-blocking)
func (e *Exporter) sendProgress(progress ExportProgress) {
	select {
	case e.progressChan <- progress:
	default:
		// Channel full, skip this update
	}
}

// Close cancels running exports, waits for them to return, then stops the
// rate limiter and closes the progress channel.
func (e *Exporter) Close() {
	e.closeOnce.Do(func() {
		e.mu.Lock()
		e.closed = true
		e.mu.Unlock()

		e.cancel()
		e.running.Wait()

		if e.rateLimiter != nil {
			e.rateLimiter.Stop()
		}
		close(e.progressChan)
	})
}
