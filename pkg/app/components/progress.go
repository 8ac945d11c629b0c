package components

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kerbaras/mangareader/pkg/app/styles"
	"github.com/kerbaras/mangareader/pkg/services"
)

// ProgressTracker shows the running exports. Finished chapters leave the
// list; the last written file is kept for the status line.
type ProgressTracker struct {
	exports  map[string]*services.ExportProgress
	order    []string
	width    int
	lastPath string
}

func NewProgressTracker(width int) *ProgressTracker {
	return &ProgressTracker{
		exports: make(map[string]*services.ExportProgress),
		width:   width,
	}
}

func (p *ProgressTracker) SetWidth(width int) {
	p.width = width
}

func (p *ProgressTracker) Update(progress services.ExportProgress) {
	key := progress.MangaID + ":" + progress.ChapterNumber.String()
	if progress.Status == services.StatusComplete {
		p.lastPath = progress.Path
		delete(p.exports, key)
		p.order = slices.DeleteFunc(p.order, func(k string) bool { return k == key })
		return
	}
	if _, ok := p.exports[key]; !ok {
		p.order = append(p.order, key)
	}
	prog := progress
	p.exports[key] = &prog
}

func (p *ProgressTracker) Clear() {
	p.exports = make(map[string]*services.ExportProgress)
	p.order = nil
}

func (p *ProgressTracker) HasActive() bool {
	return len(p.exports) > 0
}

// LastPath is the file written by the most recent finished export.
func (p *ProgressTracker) LastPath() string {
	return p.lastPath
}

func (p *ProgressTracker) View() string {
	if len(p.exports) == 0 {
		if p.lastPath != "" {
			return styles.StatusCompleted.Render("Saved " + p.lastPath)
		}
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.SubtitleStyle.Render("Exports"))
	b.WriteString("\n")

	for _, key := range p.order {
		progress := p.exports[key]

		b.WriteString(styles.TextStyle.Render(fmt.Sprintf("Chapter %s", progress.ChapterNumber)))
		b.WriteString("\n")

		statusText := progress.Status
		if progress.TotalPages > 0 {
			percentage := float64(progress.CurrentPage) / float64(progress.TotalPages) * 100
			statusText = fmt.Sprintf("%s (%d/%d pages - %.0f%%)",
				progress.Status, progress.CurrentPage, progress.TotalPages, percentage)

			b.WriteString(renderProgressBar(progress.CurrentPage, progress.TotalPages, p.width-4))
			b.WriteString("\n")
		}
		b.WriteString(styles.StatusStyle(progress.Status).Render(statusText))
		b.WriteString("\n")

		if progress.Error != nil {
			b.WriteString(styles.StatusError.Render(fmt.Sprintf("Error: %s", progress.Error)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func renderProgressBar(current, total, width int) string {
	if total == 0 || width <= 0 {
		return ""
	}

	filled := int(float64(current) / float64(total) * float64(width))
	filled = min(max(filled, 0), width)

	return styles.ProgressBarStyle.Render(strings.Repeat("█", filled)) +
		styles.ProgressEmptyStyle.Render(strings.Repeat("░", width-filled))
}

// SimpleProgress renders a bare progress bar.
func SimpleProgress(current, total, width int) string {
	return renderProgressBar(current, total, width)
}
