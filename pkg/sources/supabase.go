package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kerbaras/mangareader/pkg/data"
	"github.com/kerbaras/mangareader/pkg/utils"
)

// Supabase reads the tables through a PostgREST endpoint (<url>/rest/v1).
type Supabase struct {
	api *utils.API
}

func NewSupabase(baseURL, key string, timeout time.Duration) *Supabase {
	api := utils.NewAPI(strings.TrimRight(baseURL, "/")+"/rest/v1", timeout)
	if key != "" {
		api.SetHeader("apikey", key)
		api.SetHeader("Authorization", "Bearer "+key)
	}
	return &Supabase{api: api}
}

// NewSupabaseWithAPI is used by tests to point the source at a fake server.
func NewSupabaseWithAPI(api *utils.API) *Supabase {
	return &Supabase{api: api}
}

func (s *Supabase) ListManga(ctx context.Context) ([]data.Manga, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("order", "created_at.desc")

	var out []data.Manga
	if err := s.api.Get(ctx, "/manga", params, &out); err != nil {
		return nil, fmt.Errorf("list manga: %w", err)
	}
	return out, nil
}

func (s *Supabase) GetManga(ctx context.Context, id string) (*data.Manga, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("id", "eq."+id)
	params.Set("limit", "1")

	var rows []data.Manga
	if err := s.api.Get(ctx, "/manga", params, &rows); err != nil {
		return nil, fmt.Errorf("get manga %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (s *Supabase) ListChapters(ctx context.Context, mangaID string, order Order) ([]data.Chapter, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("manga_id", "eq."+mangaID)
	params.Set("order", "chapter_number."+postgrestOrder(order))

	var out []data.Chapter
	if err := s.api.Get(ctx, "/chapters", params, &out); err != nil {
		return nil, fmt.Errorf("list chapters of %s: %w", mangaID, err)
	}
	return out, nil
}

func (s *Supabase) ListChaptersFor(ctx context.Context, mangaIDs []string) ([]data.Chapter, error) {
	if len(mangaIDs) == 0 {
		return nil, nil
	}
	quoted := make([]string, len(mangaIDs))
	for i, id := range mangaIDs {
		quoted[i] = `"` + strings.ReplaceAll(id, `"`, `\"`) + `"`
	}
	params := url.Values{}
	params.Set("select", "*")
	params.Set("manga_id", "in.("+strings.Join(quoted, ",")+")")

	var out []data.Chapter
	if err := s.api.Get(ctx, "/chapters", params, &out); err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	return out, nil
}

func (s *Supabase) ListChapterImages(ctx context.Context, chapterID string) ([]data.ChapterImage, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("chapter_id", "eq."+chapterID)
	params.Set("order", "page_number.asc")

	var out []data.ChapterImage
	if err := s.api.Get(ctx, "/chapter_images", params, &out); err != nil {
		return nil, fmt.Errorf("list images of chapter %s: %w", chapterID, err)
	}
	return out, nil
}

func postgrestOrder(o Order) string {
	if o == Descending {
		return "desc"
	}
	return "asc"
}
