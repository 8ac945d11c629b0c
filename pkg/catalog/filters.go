package catalog

import (
	"slices"

	"github.com/kerbaras/mangareader/pkg/data"
)

// Filters is the filter state shared by the input controls and the Engine.
// It is created once per front-end and handed to both explicitly. Like the
// rest of the UI state it is owned by a single goroutine.
type Filters struct {
	criteria Criteria
	genres   []string
	// revision counts criteria changes, so a change that is later undone
	// still reads as a change.
	revision uint64
}

func NewFilters() *Filters {
	return &Filters{}
}

func (f *Filters) SetQuery(q string) {
	c := f.criteria
	c.Query = q
	f.Set(c)
}

func (f *Filters) SetGenre(g string) {
	c := f.criteria
	c.Genre = g
	f.Set(c)
}

func (f *Filters) SetStatus(s string) {
	c := f.criteria
	c.Status = s
	f.Set(c)
}

// Set replaces all three selections at once.
func (f *Filters) Set(c Criteria) {
	if c == f.criteria {
		return
	}
	f.criteria = c
	f.revision++
}

// Reset clears every selection. The vocabulary is kept.
func (f *Filters) Reset() { f.Set(Criteria{}) }

func (f *Filters) Criteria() Criteria { return f.criteria }

// Revision increases on every criteria change.
func (f *Filters) Revision() uint64 { return f.revision }

// SetGenreVocabulary replaces the genre vocabulary.
func (f *Filters) SetGenreVocabulary(genres []string) {
	f.genres = slices.Clone(genres)
}

// Genres returns a copy of the genre vocabulary.
func (f *Filters) Genres() []string {
	return slices.Clone(f.genres)
}

// Vocabulary derives the distinct genre tokens of entries: every genre string
// is split on commas, tokens are trimmed and deduplicated by exact string and
// the result is sorted ascending. Case is preserved, so "drama" and "Drama"
// are two tokens.
func Vocabulary(entries []data.Manga) []string {
	seen := make(map[string]struct{})
	genres := []string{}
	for _, m := range entries {
		for _, g := range m.GenreList() {
			if _, ok := seen[g]; ok {
				continue
			}
			seen[g] = struct{}{}
			genres = append(genres, g)
		}
	}
	slices.Sort(genres)
	return genres
}
