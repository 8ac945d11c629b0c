package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kerbaras/mangareader/pkg/catalog"
	"github.com/kerbaras/mangareader/pkg/data"
	"github.com/kerbaras/mangareader/pkg/services"
	"github.com/kerbaras/mangareader/pkg/sources"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockSource struct {
	listMangaFunc         func(ctx context.Context) ([]data.Manga, error)
	getMangaFunc          func(ctx context.Context, id string) (*data.Manga, error)
	listChaptersFunc      func(ctx context.Context, mangaID string, order sources.Order) ([]data.Chapter, error)
	listChaptersForFunc   func(ctx context.Context, mangaIDs []string) ([]data.Chapter, error)
	listChapterImagesFunc func(ctx context.Context, chapterID string) ([]data.ChapterImage, error)
}

func (m *mockSource) ListManga(ctx context.Context) ([]data.Manga, error) {
	if m.listMangaFunc != nil {
		return m.listMangaFunc(ctx)
	}
	return nil, nil
}

func (m *mockSource) GetManga(ctx context.Context, id string) (*data.Manga, error) {
	if m.getMangaFunc != nil {
		return m.getMangaFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockSource) ListChapters(ctx context.Context, mangaID string, order sources.Order) ([]data.Chapter, error) {
	if m.listChaptersFunc != nil {
		return m.listChaptersFunc(ctx, mangaID, order)
	}
	return nil, nil
}

func (m *mockSource) ListChaptersFor(ctx context.Context, mangaIDs []string) ([]data.Chapter, error) {
	if m.listChaptersForFunc != nil {
		return m.listChaptersForFunc(ctx, mangaIDs)
	}
	return nil, nil
}

func (m *mockSource) ListChapterImages(ctx context.Context, chapterID string) ([]data.ChapterImage, error) {
	if m.listChapterImagesFunc != nil {
		return m.listChapterImagesFunc(ctx, chapterID)
	}
	return nil, nil
}

func catalogEntries(n int) []data.Manga {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := make([]data.Manga, n)
	for i := range entries {
		genres, status := "Action, Drama", "OnGoing"
		if i%2 == 1 {
			genres, status = "Comedy", "Completed"
		}
		entries[i] = data.Manga{
			ID:        fmt.Sprintf("m-%02d", i),
			Title:     fmt.Sprintf("Title %02d", i),
			Genres:    genres,
			Status:    status,
			CreatedAt: base.Add(-time.Duration(i) * time.Hour),
		}
	}
	return entries
}

func newTestRouter(t *testing.T, source *mockSource) (*gin.Engine, *catalog.Store) {
	t.Helper()
	store := catalog.NewStore(source, nil)
	require.NoError(t, store.Refresh(context.Background()))
	handler := NewHandler(store, services.NewReader(source, nil), nil)
	return NewRouter(handler), store
}

func doRequest(router http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	router.ServeHTTP(w, req)
	return w
}

type listBody struct {
	Items      []data.Manga              `json:"items"`
	Filtered   int                       `json:"filtered"`
	Total      int                       `json:"total"`
	Page       int                       `json:"page"`
	TotalPages int                       `json:"total_pages"`
	Pages      []int                     `json:"pages"`
	HasPrev    bool                      `json:"has_prev"`
	HasNext    bool                      `json:"has_next"`
	Criteria   catalog.Criteria          `json:"criteria"`
	Latest     map[string][]data.Chapter `json:"latest"`
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) listBody {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body listBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	entries := catalogEntries(3)
	router, _ := newTestRouter(t, &mockSource{
		listMangaFunc: func(ctx context.Context) ([]data.Manga, error) { return entries, nil },
	})

	w := doRequest(router, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","entries":3,"generation":1}`, w.Body.String())
}

func TestListManga(t *testing.T) {
	entries := catalogEntries(45)
	router, _ := newTestRouter(t, &mockSource{
		listMangaFunc: func(ctx context.Context) ([]data.Manga, error) { return entries, nil },
	})

	body := decodeList(t, doRequest(router, http.MethodGet, "/manga?page=3"))

	assert.Len(t, body.Items, 5)
	assert.Equal(t, "m-40", body.Items[0].ID)
	assert.Equal(t, 45, body.Filtered)
	assert.Equal(t, 45, body.Total)
	assert.Equal(t, 3, body.Page)
	assert.Equal(t, 3, body.TotalPages)
	assert.Equal(t, []int{1, 2, 3}, body.Pages)
	assert.True(t, body.HasPrev)
	assert.False(t, body.HasNext)
	assert.Nil(t, body.Latest)
}

func TestListMangaFilters(t *testing.T) {
	entries := catalogEntries(45)
	router, _ := newTestRouter(t, &mockSource{
		listMangaFunc: func(ctx context.Context) ([]data.Manga, error) { return entries, nil },
	})

	body := decodeList(t, doRequest(router, http.MethodGet, "/manga?genre=comedy&status=COMPLETED&q=title"))
	assert.Equal(t, 22, body.Filtered)
	assert.Equal(t, 2, body.TotalPages)
	assert.Equal(t, catalog.Criteria{Query: "title", Genre: "comedy", Status: "COMPLETED"}, body.Criteria)
	for _, m := range body.Items {
		assert.Equal(t, "Completed", m.Status)
	}

	body = decodeList(t, doRequest(router, http.MethodGet, "/manga?q=zzz&page=4"))
	assert.Empty(t, body.Items)
	assert.Equal(t, 1, body.Page)
	assert.Equal(t, 1, body.TotalPages)
}

func TestListMangaPageOutOfRange(t *testing.T) {
	entries := catalogEntries(45)
	router, _ := newTestRouter(t, &mockSource{
		listMangaFunc: func(ctx context.Context) ([]data.Manga, error) { return entries, nil },
	})

	assert.Equal(t, 3, decodeList(t, doRequest(router, http.MethodGet, "/manga?page=99")).Page)
	assert.Equal(t, 1, decodeList(t, doRequest(router, http.MethodGet, "/manga?page=-2")).Page)
	assert.Equal(t, 1, decodeList(t, doRequest(router, http.MethodGet, "/manga?page=abc")).Page)
}

func TestListMangaLatest(t *testing.T) {
	entries := catalogEntries(3)
	router, _ := newTestRouter(t, &mockSource{
		listMangaFunc: func(ctx context.Context) ([]data.Manga, error) { return entries, nil },
		listChaptersForFunc: func(ctx context.Context, ids []string) ([]data.Chapter, error) {
			return []data.Chapter{
				{ID: "c1", MangaID: "m-00", Title: "Chapter 1", Number: "1"},
				{ID: "c2", MangaID: "m-00", Title: "Chapter 2", Number: "2"},
				{ID: "c3", MangaID: "m-00", Title: "Chapter 3", Number: "3"},
			}, nil
		},
	})

	body := decodeList(t, doRequest(router, http.MethodGet, "/manga?latest=2"))
	require.Len(t, body.Latest["m-00"], 2)
	assert.Equal(t, "c3", body.Latest["m-00"][0].ID)
}

func TestListMangaLatestFailureKeepsItems(t *testing.T) {
	entries := catalogEntries(3)
	router, _ := newTestRouter(t, &mockSource{
		listMangaFunc: func(ctx context.Context) ([]data.Manga, error) { return entries, nil },
		listChaptersForFunc: func(ctx context.Context, ids []string) ([]data.Chapter, error) {
			return nil, errors.New("boom")
		},
	})

	body := decodeList(t, doRequest(router, http.MethodGet, "/manga?latest=2"))
	assert.Len(t, body.Items, 3)
	assert.Nil(t, body.Latest)
}

func TestGenres(t *testing.T) {
	router, _ := newTestRouter(t, &mockSource{
		listMangaFunc: func(ctx context.Context) ([]data.Manga, error) {
			return []data.Manga{{ID: "1", Genres: "Action, Drama"}, {ID: "2", Genres: "Drama, Comedy"}}, nil
		},
	})

	w := doRequest(router, http.MethodGet, "/manga/genres")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"genres":["Action","Comedy","Drama"]}`, w.Body.String())
}

func detailSource() *mockSource {
	return &mockSource{
		getMangaFunc: func(ctx context.Context, id string) (*data.Manga, error) {
			if id != "m-1" {
				return nil, nil
			}
			return &data.Manga{ID: "m-1", Title: "One"}, nil
		},
		listChaptersFunc: func(ctx context.Context, mangaID string, order sources.Order) ([]data.Chapter, error) {
			return []data.Chapter{
				{ID: "c2", MangaID: mangaID, Number: "2"},
				{ID: "c1", MangaID: mangaID, Number: "1"},
			}, nil
		},
		listChapterImagesFunc: func(ctx context.Context, chapterID string) ([]data.ChapterImage, error) {
			return []data.ChapterImage{{ID: "p1", ChapterID: chapterID, ImageURL: "https://cdn/1.jpg", PageNumber: 1}}, nil
		},
	}
}

func TestGetByID(t *testing.T) {
	router, _ := newTestRouter(t, detailSource())

	w := doRequest(router, http.MethodGet, "/manga/m-1")
	require.Equal(t, http.StatusOK, w.Code)

	var details services.Details
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &details))
	assert.Equal(t, "One", details.Manga.Title)
	assert.Len(t, details.Chapters, 2)

	w = doRequest(router, http.MethodGet, "/manga/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetByIDUpstreamError(t *testing.T) {
	source := detailSource()
	source.getMangaFunc = func(ctx context.Context, id string) (*data.Manga, error) {
		return nil, errors.New("connection reset")
	}
	router, _ := newTestRouter(t, source)

	w := doRequest(router, http.MethodGet, "/manga/m-1")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestChapter(t *testing.T) {
	router, _ := newTestRouter(t, detailSource())

	w := doRequest(router, http.MethodGet, "/manga/m-1/chapters/1")
	require.Equal(t, http.StatusOK, w.Code)

	var view services.ChapterView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "c1", view.Chapter.ID)
	assert.Len(t, view.Images, 1)
	assert.Nil(t, view.Prev)
	require.NotNil(t, view.Next)
	assert.Equal(t, data.ChapterNumber("2"), view.Next.Number)

	assert.Equal(t, http.StatusNotFound, doRequest(router, http.MethodGet, "/manga/m-1/chapters/7").Code)
	assert.Equal(t, http.StatusNotFound, doRequest(router, http.MethodGet, "/manga/nope/chapters/1").Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(router, http.MethodGet, "/manga/m-1/chapters/first").Code)
}

func TestRefresh(t *testing.T) {
	n := 2
	fail := false
	router, store := newTestRouter(t, &mockSource{
		listMangaFunc: func(ctx context.Context) ([]data.Manga, error) {
			if fail {
				return nil, errors.New("offline")
			}
			return catalogEntries(n), nil
		},
	})

	n = 5
	w := doRequest(router, http.MethodPost, "/refresh")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"entries":5,"generation":2}`, w.Body.String())

	fail = true
	w = doRequest(router, http.MethodPost, "/refresh")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, 5, store.Len())
}

func TestRun(t *testing.T) {
	router, _ := newTestRouter(t, &mockSource{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, "127.0.0.1:0", router, zap.NewNop())
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
