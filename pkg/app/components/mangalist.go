package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kerbaras/mangareader/pkg/app/styles"
	"github.com/kerbaras/mangareader/pkg/data"
)

const descriptionLimit = 80

type MangaListItem struct {
	Manga  data.Manga
	Latest []data.Chapter
}

// MangaList renders one catalog page as cards with a wrapping cursor.
type MangaList struct {
	Items         []MangaListItem
	SelectedIndex int
	Width         int
	Height        int
	Empty         string
}

func NewMangaList() *MangaList {
	return &MangaList{
		Items:         []MangaListItem{},
		SelectedIndex: 0,
		Width:         80,
		Height:        20,
		Empty:         "No titles found",
	}
}

// SetPage replaces the items with a page of entries. Latest chapters are
// carried over for titles still on the page.
func (m *MangaList) SetPage(entries []data.Manga) {
	latest := make(map[string][]data.Chapter, len(m.Items))
	for _, item := range m.Items {
		latest[item.Manga.ID] = item.Latest
	}

	items := make([]MangaListItem, len(entries))
	for i, e := range entries {
		items[i] = MangaListItem{Manga: e, Latest: latest[e.ID]}
	}
	m.SetItems(items)
}

func (m *MangaList) SetItems(items []MangaListItem) {
	m.Items = items
	if m.SelectedIndex >= len(items) && len(items) > 0 {
		m.SelectedIndex = len(items) - 1
	}
	if len(items) == 0 {
		m.SelectedIndex = 0
	}
}

// SetLatest attaches latest chapters by title id.
func (m *MangaList) SetLatest(latest map[string][]data.Chapter) {
	for i := range m.Items {
		if chapters, ok := latest[m.Items[i].Manga.ID]; ok {
			m.Items[i].Latest = chapters
		}
	}
}

// IDs returns the title ids in display order.
func (m *MangaList) IDs() []string {
	ids := make([]string, len(m.Items))
	for i, item := range m.Items {
		ids[i] = item.Manga.ID
	}
	return ids
}

func (m *MangaList) Next() {
	if len(m.Items) == 0 {
		return
	}
	m.SelectedIndex++
	if m.SelectedIndex >= len(m.Items) {
		m.SelectedIndex = 0
	}
}

func (m *MangaList) Prev() {
	if len(m.Items) == 0 {
		return
	}
	m.SelectedIndex--
	if m.SelectedIndex < 0 {
		m.SelectedIndex = len(m.Items) - 1
	}
}

func (m *MangaList) Selected() *MangaListItem {
	if len(m.Items) == 0 || m.SelectedIndex >= len(m.Items) {
		return nil
	}
	return &m.Items[m.SelectedIndex]
}

func (m *MangaList) View() string {
	if len(m.Items) == 0 {
		emptyMsg := styles.MutedStyle.Render(m.Empty)
		return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, emptyMsg)
	}

	var b strings.Builder
	for i, item := range m.Items {
		cardStyle := styles.CardStyle
		if i == m.SelectedIndex {
			cardStyle = styles.ActiveCardStyle
		}
		b.WriteString(cardStyle.Width(m.Width - 4).Render(renderCard(item)))
		b.WriteString("\n")
	}
	return b.String()
}

func renderCard(item MangaListItem) string {
	manga := item.Manga

	lines := []string{styles.SelectedStyle.Render(manga.Title)}
	if manga.Alternative != "" {
		lines = append(lines, styles.SubtitleStyle.Render(manga.Alternative))
	}

	meta := []string{}
	if manga.Status != "" {
		meta = append(meta, styles.StatusStyle(manga.Status).Render(manga.Status))
	}
	if rating := manga.RatingValue(); rating != "" {
		meta = append(meta, styles.WarningStyle.Render("★ "+rating))
	}
	if rank := manga.RankValue(); rank != "" {
		meta = append(meta, styles.MutedStyle.Render("#"+rank))
	}
	if genres := manga.GenreList(); len(genres) > 0 {
		meta = append(meta, styles.GenreStyle.Render(strings.Join(genres, ", ")))
	}
	if len(meta) > 0 {
		lines = append(lines, strings.Join(meta, "  "))
	}

	if desc := Truncate(manga.Description, descriptionLimit); desc != "" {
		lines = append(lines, styles.TextStyle.Render(desc))
	}

	if len(item.Latest) > 0 {
		chapters := make([]string, len(item.Latest))
		for i, c := range item.Latest {
			chapters[i] = fmt.Sprintf("Ch. %s", c.Number)
		}
		lines = append(lines, styles.MutedStyle.Render("Latest: "+strings.Join(chapters, " · ")))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Truncate shortens s to at most limit runes, ending in "...".
func Truncate(s string, limit int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= limit {
		return string(r)
	}
	if limit <= 3 {
		return string(r[:limit])
	}
	return string(r[:limit-3]) + "..."
}
