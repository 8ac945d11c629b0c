package screens

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerbaras/mangareader/pkg/catalog"
	"github.com/kerbaras/mangareader/pkg/data"
)

func newCatalog(t *testing.T, source *mockSource) *CatalogScreen {
	t.Helper()
	store := catalog.NewStore(source, nil)
	s := NewCatalogScreen(context.Background(), store, nil, catalog.NewFilters(), nil)
	s.SetSize(100, 40)
	return s
}

// mountAndLoad mounts s and delivers its refresh result.
func mountAndLoad(t *testing.T, s *CatalogScreen) {
	t.Helper()
	s.Init()
	s.Update(refreshCatalog(context.Background(), s.store, s.mount)())
}

func TestCatalogScreen_Load(t *testing.T) {
	s := newCatalog(t, librarySource("http://images"))

	s.Init()
	assert.Contains(t, s.View(), "Loading catalog")

	mountAndLoad(t, s)

	assert.False(t, s.loading)
	assert.Equal(t, 45, s.view.Total)
	assert.Equal(t, 3, s.view.TotalPages)
	assert.Len(t, s.list.Items, 20)
	assert.Equal(t, []string{"Action", "Comedy", "Drama"}, s.filters.Genres())

	view := s.View()
	assert.Contains(t, view, "Showing 20 of 45 results (45 total) · Page 1 / 3")
	assert.Contains(t, view, "Title 00")
}

func TestCatalogScreen_Pagination(t *testing.T) {
	s := newCatalog(t, librarySource("http://images"))
	mountAndLoad(t, s)

	s.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 2, s.view.Page)

	s.Update(keyRunes("l"))
	assert.Equal(t, 3, s.view.Page)
	assert.Len(t, s.list.Items, 5)

	// Past the last page stays on the last page.
	s.Update(keyRunes("l"))
	assert.Equal(t, 3, s.view.Page)

	// Number keys pick from the page window [1 2 3].
	s.Update(keyRunes("2"))
	assert.Equal(t, 2, s.view.Page)
	s.Update(keyRunes("1"))
	assert.Equal(t, 1, s.view.Page)

	// Outside the window nothing happens.
	s.Update(keyRunes("5"))
	assert.Equal(t, 1, s.view.Page)

	s.Update(keyRunes("h"))
	assert.Equal(t, 1, s.view.Page)
}

func TestCatalogScreen_FiltersResetPage(t *testing.T) {
	s := newCatalog(t, librarySource("http://images"))
	mountAndLoad(t, s)
	s.Update(keyRunes("l"))
	require.Equal(t, 2, s.view.Page)

	s.Update(keyRunes("s"))
	assert.Equal(t, catalog.StatusOnGoing, s.filters.Criteria().Status)
	assert.Equal(t, 1, s.view.Page)
	assert.Equal(t, 23, s.view.Filtered)

	s.Update(keyRunes("s"))
	assert.Equal(t, catalog.StatusCompleted, s.filters.Criteria().Status)
	assert.Equal(t, 22, s.view.Filtered)

	s.Update(keyRunes("s"))
	assert.Equal(t, "", s.filters.Criteria().Status)
	assert.Equal(t, 45, s.view.Filtered)
}

func TestCatalogScreen_GenreCycle(t *testing.T) {
	s := newCatalog(t, librarySource("http://images"))
	mountAndLoad(t, s)

	s.Update(keyRunes("g"))
	assert.Equal(t, "Action", s.filters.Criteria().Genre)
	assert.Equal(t, 23, s.view.Filtered)

	s.Update(keyRunes("g"))
	assert.Equal(t, "Comedy", s.filters.Criteria().Genre)

	s.Update(keyRunes("G"))
	s.Update(keyRunes("G"))
	assert.Equal(t, "", s.filters.Criteria().Genre)

	s.Update(keyRunes("G"))
	assert.Equal(t, "Drama", s.filters.Criteria().Genre)

	s.Update(keyRunes("c"))
	assert.True(t, s.filters.Criteria().IsZero())
}

func TestCatalogScreen_Search(t *testing.T) {
	s := newCatalog(t, librarySource("http://images"))
	mountAndLoad(t, s)

	s.Update(keyRunes("/"))
	require.True(t, s.Typing())

	// While typing, letters are text, not commands.
	s.Update(keyRunes("title 0"))
	assert.Equal(t, "title 0", s.filters.Criteria().Query)
	assert.Equal(t, 10, s.view.Filtered)
	assert.Equal(t, "", s.filters.Criteria().Status)

	s.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, s.Typing())

	s.Update(keyRunes("/"))
	s.Update(keyRunes("zzz"))
	s.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 0, s.view.Filtered)
	assert.Equal(t, 1, s.view.TotalPages)
	assert.Contains(t, s.View(), "No titles match the current filters")
}

func TestCatalogScreen_Open(t *testing.T) {
	s := newCatalog(t, librarySource("http://images"))
	mountAndLoad(t, s)

	s.Update(keyRunes("j"))
	_, cmd := s.Update(tea.KeyMsg{Type: tea.KeyEnter})

	msg := switchMsg(t, cmd)
	assert.Equal(t, "details", msg.Screen)
	assert.Equal(t, "m-01", msg.Data)
}

func TestCatalogScreen_FetchFailure(t *testing.T) {
	source := &mockSource{
		listMangaFunc: func(ctx context.Context) ([]data.Manga, error) {
			return nil, errors.New("connection refused")
		},
	}
	s := newCatalog(t, source)
	mountAndLoad(t, s)

	assert.Error(t, s.err)
	assert.Equal(t, 0, s.view.Total)
	assert.Contains(t, s.View(), "Could not load the catalog")
}

func TestCatalogScreen_DiscardsLateResult(t *testing.T) {
	s := newCatalog(t, librarySource("http://images"))
	s.Init()
	stale := s.mount

	// The store is filled by someone else meanwhile.
	require.NoError(t, s.store.Refresh(context.Background()))

	s.Unmount()
	s.Update(catalogLoadedMsg{mount: stale})

	assert.Equal(t, 0, s.view.Total, "a result for an unmounted screen must not be applied")
	assert.Empty(t, s.filters.Genres())

	// A remount applies its own result.
	mountAndLoad(t, s)
	assert.Equal(t, 45, s.view.Total)
}

func TestCatalogScreen_CancelledRefreshKeepsStore(t *testing.T) {
	s := newCatalog(t, librarySource("http://images"))

	ctx, cancel := context.WithCancel(context.Background())
	s.Init()
	cmd := refreshCatalog(ctx, s.store, s.mount)
	cancel()

	msg := cmd().(catalogLoadedMsg)
	assert.ErrorIs(t, msg.err, catalog.ErrStaleRefresh)

	s.Update(msg)
	assert.NoError(t, s.err, "a superseded refresh is not an error")
	assert.Equal(t, 0, s.store.Len())
}

func TestCatalogScreen_LatestChapters(t *testing.T) {
	controller := newTestController(t, librarySource("http://images"))
	s := NewCatalogScreen(context.Background(), controller.Store, controller.Reader, catalog.NewFilters(), nil)
	s.SetSize(100, 40)

	settle(s, s.Init())

	require.Equal(t, 45, s.view.Total)
	first := s.list.Items[0]
	require.Equal(t, "m-00", first.Manga.ID)
	require.Len(t, first.Latest, 3)
	assert.Equal(t, data.ChapterNumber("10"), first.Latest[0].Number)
	assert.Contains(t, s.View(), "Latest: Ch. 10 · Ch. 2 · Ch. 1")

	// A response for a page no longer shown is ignored.
	s.Update(latestLoadedMsg{key: "other", latest: map[string][]data.Chapter{"m-00": nil}})
	assert.Len(t, s.list.Items[0].Latest, 3)
}

func TestCycle(t *testing.T) {
	options := []string{"a", "b"}

	tests := []struct {
		current string
		step    int
		want    string
	}{
		{"", 1, "a"},
		{"a", 1, "b"},
		{"b", 1, ""},
		{"", -1, "b"},
		{"a", -1, ""},
		{"unknown", 1, "a"},
	}

	for _, tt := range tests {
		if got := cycle(options, tt.current, tt.step); got != tt.want {
			t.Errorf("cycle(%q, %d) = %q, want %q", tt.current, tt.step, got, tt.want)
		}
	}

	if got := cycle(nil, "", 1); got != "" {
		t.Errorf("cycle over no options = %q, want empty", got)
	}
}

func TestCatalogScreen_PagerLabels(t *testing.T) {
	s := newCatalog(t, librarySource("http://images"))
	mountAndLoad(t, s)

	pager := s.pager()
	for _, want := range []string{"1:1", "2:2", "3:3", "›"} {
		assert.True(t, strings.Contains(pager, want), "pager %q lacks %q", pager, want)
	}
}
