package integrations

import "github.com/kerbaras/mangareader/pkg/data"

// ImageData is one downloaded chapter page.
type ImageData struct {
	Content     []byte
	ContentType string
	Index       int
}

// CoverData is the title's cover image.
type CoverData struct {
	Content     []byte
	ContentType string
}

// Builder assembles one chapter into a book, page by page.
type Builder interface {
	Init(manga *data.Manga, chapter *data.Chapter) error
	SetCover(cover CoverData) error
	Next(page ImageData) error
	// Done writes the book and returns its path.
	Done() (string, error)
	// Close drops any temporary state; safe to call after Done.
	Close() error
}
