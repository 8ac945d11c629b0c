package data

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"
)

const schema = `
CREATE TABLE IF NOT EXISTS manga (
	id           VARCHAR PRIMARY KEY,
	title        VARCHAR NOT NULL,
	alternative  VARCHAR,
	author       VARCHAR,
	artist       VARCHAR,
	genres       VARCHAR,
	"type"       VARCHAR,
	release_year VARCHAR,
	status       VARCHAR,
	description  VARCHAR,
	image_url    VARCHAR,
	rating       VARCHAR,
	"rank"       VARCHAR,
	created_at   TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS chapters (
	id             VARCHAR PRIMARY KEY,
	manga_id       VARCHAR NOT NULL,
	title          VARCHAR NOT NULL,
	url            VARCHAR,
	chapter_number VARCHAR NOT NULL,
	published_date VARCHAR,
	created_at     TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS chapter_images (
	id          VARCHAR PRIMARY KEY,
	chapter_id  VARCHAR NOT NULL,
	image_url   VARCHAR NOT NULL,
	page_number INTEGER NOT NULL,
	created_at  TIMESTAMP NOT NULL
);
`

// InitDuckDB opens (creating when needed) the mirror database at path and
// applies the schema.
func InitDuckDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}

// Repository serves the three tables from a local DuckDB mirror. It satisfies
// sources.Source and adds the writes used by the mirror command.
type Repository struct {
	db *sql.DB
}

func NewDuckDBRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Close() error {
	return r.db.Close()
}

const mangaColumns = `id, title, alternative, author, artist, genres, "type", release_year,
	status, description, image_url, rating, "rank", created_at`

func scanManga(row interface{ Scan(...any) error }) (*Manga, error) {
	var (
		m        Manga
		nullable [11]sql.NullString
	)
	err := row.Scan(&m.ID, &m.Title,
		&nullable[0], &nullable[1], &nullable[2], &nullable[3], &nullable[4], &nullable[5],
		&nullable[6], &nullable[7], &nullable[8], &nullable[9], &nullable[10],
		&m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.Alternative = nullable[0].String
	m.Author = nullable[1].String
	m.Artist = nullable[2].String
	m.Genres = nullable[3].String
	m.Type = nullable[4].String
	m.ReleaseYear = nullable[5].String
	m.Status = nullable[6].String
	m.Description = nullable[7].String
	m.ImageURL = nullable[8].String
	m.Rating = nullable[9].String
	m.Rank = nullable[10].String
	return &m, nil
}

func (r *Repository) ListManga(ctx context.Context) ([]Manga, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+mangaColumns+` FROM manga ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list manga: %w", err)
	}
	defer rows.Close()

	var out []Manga
	for rows.Next() {
		m, err := scanManga(rows)
		if err != nil {
			return nil, fmt.Errorf("scan manga: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *Repository) GetManga(ctx context.Context, id string) (*Manga, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+mangaColumns+` FROM manga WHERE id = ?`, id)
	m, err := scanManga(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get manga %s: %w", id, err)
	}
	return m, nil
}

func (r *Repository) SaveManga(ctx context.Context, m *Manga) error {
	createdAt := m.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO manga (`+mangaColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			alternative = excluded.alternative,
			author = excluded.author,
			artist = excluded.artist,
			genres = excluded.genres,
			"type" = excluded."type",
			release_year = excluded.release_year,
			status = excluded.status,
			description = excluded.description,
			image_url = excluded.image_url,
			rating = excluded.rating,
			"rank" = excluded."rank",
			created_at = excluded.created_at`,
		m.ID, m.Title,
		nullString(m.Alternative), nullString(m.Author), nullString(m.Artist), nullString(m.Genres),
		nullString(m.Type), nullString(m.ReleaseYear), nullString(m.Status), nullString(m.Description),
		nullString(m.ImageURL), nullString(m.Rating), nullString(m.Rank),
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("save manga %s: %w", m.ID, err)
	}
	return nil
}

const chapterColumns = `id, manga_id, title, url, chapter_number, published_date, created_at`

func scanChapters(rows *sql.Rows) ([]Chapter, error) {
	defer rows.Close()

	var out []Chapter
	for rows.Next() {
		var (
			c         Chapter
			url       sql.NullString
			published sql.NullString
			number    string
		)
		if err := rows.Scan(&c.ID, &c.MangaID, &c.Title, &url, &number, &published, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chapter: %w", err)
		}
		c.URL = url.String
		c.PublishedDate = published.String
		c.Number = ChapterNumber(number)
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListChapters orders numerically; chapter_number is stored as text so the
// exact key survives the round trip. Numbers that do not parse (empty or
// free text) sort last.
func (r *Repository) ListChapters(ctx context.Context, mangaID string, order Order) ([]Chapter, error) {
	direction := "ASC"
	if order == Descending {
		direction = "DESC"
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+chapterColumns+` FROM chapters WHERE manga_id = ?
		 ORDER BY TRY_CAST(chapter_number AS DOUBLE) `+direction+` NULLS LAST, chapter_number`, mangaID)
	if err != nil {
		return nil, fmt.Errorf("list chapters of %s: %w", mangaID, err)
	}
	return scanChapters(rows)
}

func (r *Repository) ListChaptersFor(ctx context.Context, mangaIDs []string) ([]Chapter, error) {
	if len(mangaIDs) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(mangaIDs)), ",")
	args := make([]any, len(mangaIDs))
	for i, id := range mangaIDs {
		args[i] = id
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+chapterColumns+` FROM chapters WHERE manga_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	return scanChapters(rows)
}

func (r *Repository) SaveChapter(ctx context.Context, c *Chapter) error {
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chapters (`+chapterColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			manga_id = excluded.manga_id,
			title = excluded.title,
			url = excluded.url,
			chapter_number = excluded.chapter_number,
			published_date = excluded.published_date,
			created_at = excluded.created_at`,
		c.ID, c.MangaID, c.Title, nullString(c.URL), string(c.Number), nullString(c.PublishedDate), createdAt,
	)
	if err != nil {
		return fmt.Errorf("save chapter %s: %w", c.ID, err)
	}
	return nil
}

func (r *Repository) ListChapterImages(ctx context.Context, chapterID string) ([]ChapterImage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, chapter_id, image_url, page_number, created_at
		FROM chapter_images WHERE chapter_id = ? ORDER BY page_number ASC`, chapterID)
	if err != nil {
		return nil, fmt.Errorf("list images of chapter %s: %w", chapterID, err)
	}
	defer rows.Close()

	var out []ChapterImage
	for rows.Next() {
		var img ChapterImage
		if err := rows.Scan(&img.ID, &img.ChapterID, &img.ImageURL, &img.PageNumber, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chapter image: %w", err)
		}
		out = append(out, img)
	}
	return out, rows.Err()
}

func (r *Repository) SaveChapterImage(ctx context.Context, img *ChapterImage) error {
	createdAt := img.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chapter_images (id, chapter_id, image_url, page_number, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			chapter_id = excluded.chapter_id,
			image_url = excluded.image_url,
			page_number = excluded.page_number,
			created_at = excluded.created_at`,
		img.ID, img.ChapterID, img.ImageURL, img.PageNumber, createdAt,
	)
	if err != nil {
		return fmt.Errorf("save chapter image %s: %w", img.ID, err)
	}
	return nil
}

// Counts reports the number of rows in each table.
func (r *Repository) Counts(ctx context.Context) (manga, chapters, images int, err error) {
	err = r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM manga),
			(SELECT COUNT(*) FROM chapters),
			(SELECT COUNT(*) FROM chapter_images)`).Scan(&manga, &chapters, &images)
	return
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
