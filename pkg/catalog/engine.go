package catalog

import (
	"context"

	"github.com/kerbaras/mangareader/pkg/data"
)

// View is one derived catalog page.
type View struct {
	Items      []data.Manga `json:"items"`
	Filtered   int          `json:"filtered"`
	Total      int          `json:"total"`
	Page       int          `json:"page"`
	TotalPages int          `json:"total_pages"`
	Pages      []int        `json:"pages"`
	HasPrev    bool         `json:"has_prev"`
	HasNext    bool         `json:"has_next"`
}

// Engine derives the filtered, paginated catalog view from a Store and the
// shared Filters. It keeps the current page valid: any change of criteria
// sends it back to page 1 and a shrinking result set clamps it.
type Engine struct {
	store   *Store
	filters *Filters

	page int
	seen uint64

	cache struct {
		valid      bool
		generation uint64
		criteria   Criteria
		items      []data.Manga
	}
}

func NewEngine(store *Store, filters *Filters) *Engine {
	return &Engine{
		store:   store,
		filters: filters,
		page:    1,
		seen:    filters.Revision(),
	}
}

// Refresh re-fetches the store and, when the result is applied, rebuilds the
// genre vocabulary from it.
func (e *Engine) Refresh(ctx context.Context) error {
	if err := e.store.Refresh(ctx); err != nil {
		return err
	}
	e.filters.SetGenreVocabulary(Vocabulary(e.store.Entries()))
	return nil
}

// Derive runs one filter and pagination pass.
func (e *Engine) Derive() View {
	entries, filtered := e.sync()
	total := TotalPages(len(filtered))

	return View{
		Items:      PageSlice(filtered, e.page),
		Filtered:   len(filtered),
		Total:      len(entries),
		Page:       e.page,
		TotalPages: total,
		Pages:      PageWindow(e.page, total),
		HasPrev:    e.page > 1,
		HasNext:    e.page < total,
	}
}

// Page returns the current page after applying pending criteria changes.
func (e *Engine) Page() int {
	e.sync()
	return e.page
}

// SetPage selects page, clamped to the valid range.
func (e *Engine) SetPage(page int) {
	_, filtered := e.sync()
	e.page = ClampPage(page, TotalPages(len(filtered)))
}

func (e *Engine) NextPage() { e.SetPage(e.Page() + 1) }
func (e *Engine) PrevPage() { e.SetPage(e.Page() - 1) }

// Invalidate drops the cached filtered list.
func (e *Engine) Invalidate() {
	e.cache.valid = false
	e.cache.items = nil
}

// sync resets the page on a criteria change, refreshes the filtered list when
// its inputs changed and clamps the page against it.
func (e *Engine) sync() (entries, filtered []data.Manga) {
	criteria := e.filters.Criteria()
	if rev := e.filters.Revision(); rev != e.seen {
		e.seen = rev
		e.page = 1
	}

	entries, generation := e.store.Snapshot()
	if !e.cache.valid || e.cache.generation != generation || e.cache.criteria != criteria {
		e.cache.items = Filter(entries, criteria)
		e.cache.generation = generation
		e.cache.criteria = criteria
		e.cache.valid = true
	}

	e.page = ClampPage(e.page, TotalPages(len(e.cache.items)))
	return entries, e.cache.items
}
