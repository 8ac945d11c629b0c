package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerbaras/mangareader/pkg/data"
	"github.com/kerbaras/mangareader/pkg/sources"
)

func TestMirror(t *testing.T) {
	db, err := data.InitDuckDB(filepath.Join(t.TempDir(), "mirror.db"))
	require.NoError(t, err)
	repo := data.NewDuckDBRepository(db)
	defer repo.Close()

	ctx := context.Background()
	stats, err := Mirror(ctx, librarySource("http://images"), repo, nil)
	require.NoError(t, err)

	assert.Equal(t, MirrorStats{Manga: 1, Chapters: 4, Images: 12}, stats)

	m, c, i, err := repo.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, m)
	assert.Equal(t, 4, c)
	assert.Equal(t, 12, i)

	// The mirror serves the same reader views as the remote source.
	view, err := NewReader(repo, nil).Chapter(ctx, "manga-1", "10.10")
	require.NoError(t, err)
	assert.Equal(t, "ch-10-10", view.Chapter.ID)
	assert.Len(t, view.Images, 3)
	require.NotNil(t, view.Prev)
	assert.Equal(t, data.ChapterNumber("10"), view.Prev.Number)
}

func TestMirror_SourceError(t *testing.T) {
	db, err := data.InitDuckDB(filepath.Join(t.TempDir(), "mirror.db"))
	require.NoError(t, err)
	repo := data.NewDuckDBRepository(db)
	defer repo.Close()

	source := librarySource("http://images")
	source.listChaptersFunc = func(ctx context.Context, mangaID string, order sources.Order) ([]data.Chapter, error) {
		return nil, errors.New("rate limited")
	}

	_, err = Mirror(context.Background(), source, repo, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}
