package integrations

import (
	"errors"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-shiori/go-epub"

	"github.com/kerbaras/mangareader/pkg/data"
)

// EPubBuilder streams chapter pages to a scratch directory and packs them
// into a single EPUB on Done.
type EPubBuilder struct {
	outputDir string
	workDir   string

	manga   *data.Manga
	chapter *data.Chapter
	cover   *CoverData
	pages   []string
}

func NewEPubBuilder(outputDir string) *EPubBuilder {
	return &EPubBuilder{outputDir: outputDir}
}

// Init starts a new book for chapter.
func (b *EPubBuilder) Init(manga *data.Manga, chapter *data.Chapter) error {
	if manga == nil || chapter == nil {
		return errors.New("manga and chapter are required")
	}
	if err := b.Close(); err != nil {
		return err
	}

	workDir, err := os.MkdirTemp("", "mangareader-epub-*")
	if err != nil {
		return fmt.Errorf("failed to create work directory: %w", err)
	}

	b.workDir = workDir
	b.manga = manga
	b.chapter = chapter
	b.cover = nil
	b.pages = nil
	return nil
}

// SetCover puts cover in front of the pages.
func (b *EPubBuilder) SetCover(cover CoverData) error {
	if b.workDir == "" {
		return errors.New("builder not initialized")
	}
	if len(cover.Content) == 0 {
		return errors.New("cover is empty")
	}
	b.cover = &cover
	return nil
}

// Next stores one page. Pages are laid out in the order they are added.
func (b *EPubBuilder) Next(page ImageData) error {
	if b.workDir == "" {
		return errors.New("builder not initialized")
	}
	if len(page.Content) == 0 {
		return fmt.Errorf("page %d is empty", page.Index+1)
	}

	name := fmt.Sprintf("page_%04d%s", len(b.pages)+1, extensionFor(page.ContentType))
	path := filepath.Join(b.workDir, name)
	if err := os.WriteFile(path, page.Content, 0o644); err != nil {
		return fmt.Errorf("failed to write page %d: %w", page.Index+1, err)
	}
	b.pages = append(b.pages, path)
	return nil
}

// Done writes "<title> - Chapter <n>.epub" into the output directory.
func (b *EPubBuilder) Done() (string, error) {
	if b.workDir == "" {
		return "", errors.New("builder not initialized")
	}
	if len(b.pages) == 0 {
		return "", errors.New("no pages to compile")
	}

	if err := os.MkdirAll(b.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	title := ChapterTitle(b.manga, b.chapter)
	e, err := epub.NewEpub(title)
	if err != nil {
		return "", fmt.Errorf("failed to create EPub: %w", err)
	}

	author := b.manga.Author
	if author == "" {
		author = "Unknown"
	}
	e.SetAuthor(author)
	if b.manga.Description != "" {
		e.SetDescription(b.manga.Description)
	}
	e.SetLang("en")

	if b.cover != nil {
		coverPath := filepath.Join(b.workDir, "cover"+extensionFor(b.cover.ContentType))
		if err := os.WriteFile(coverPath, b.cover.Content, 0o644); err != nil {
			return "", fmt.Errorf("failed to write cover: %w", err)
		}
		internal, err := e.AddImage(coverPath, "")
		if err != nil {
			return "", fmt.Errorf("failed to add cover: %w", err)
		}
		coverHTML := fmt.Sprintf(`<div class="cover"><img src="%s" alt="Cover" style="width:100%%;height:auto;"/></div>`, internal)
		if _, err := e.AddSection(coverHTML, "Cover", "cover.xhtml", ""); err != nil {
			return "", fmt.Errorf("failed to add cover section: %w", err)
		}
	}

	var body strings.Builder
	body.WriteString(fmt.Sprintf("<h1>%s</h1>\n", html.EscapeString(title)))
	for i, path := range b.pages {
		internal, err := e.AddImage(path, "")
		if err != nil {
			return "", fmt.Errorf("failed to add page %d: %w", i+1, err)
		}
		body.WriteString(fmt.Sprintf(
			`<div class="page"><img src="%s" alt="Page %d" style="width:100%%;height:auto;"/></div>%s`,
			internal, i+1, "\n",
		))
	}

	if _, err := e.AddSection(body.String(), title, "", ""); err != nil {
		return "", fmt.Errorf("failed to add section: %w", err)
	}

	outputPath := filepath.Join(b.outputDir, sanitizeFilename(title)+".epub")
	if err := e.Write(outputPath); err != nil {
		return "", fmt.Errorf("failed to write EPub: %w", err)
	}
	return outputPath, nil
}

func (b *EPubBuilder) Close() error {
	if b.workDir == "" {
		return nil
	}
	err := os.RemoveAll(b.workDir)
	b.workDir = ""
	b.pages = nil
	return err
}

// ChapterTitle names a chapter the way the book and its file are titled.
func ChapterTitle(manga *data.Manga, chapter *data.Chapter) string {
	return fmt.Sprintf("%s - Chapter %s", manga.Title, chapter.Number)
}

func extensionFor(contentType string) string {
	switch strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0])) {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

// sanitizeFilename removes characters that are invalid in filenames
func sanitizeFilename(name string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := name
	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.TrimSpace(result)
	result = strings.Trim(result, ".")
	return result
}
