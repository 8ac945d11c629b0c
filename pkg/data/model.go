package data

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Order selects the direction of an ordered table read.
type Order int

const (
	Ascending Order = iota
	Descending
)

// ErrNotFound is returned (wrapped) when a row addressed by id does not exist.
var ErrNotFound = errors.New("not found")

// Manga is one catalog entry. Optional columns are empty strings when unset.
type Manga struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Alternative string    `json:"alternative"`
	Author      string    `json:"author"`
	Artist      string    `json:"artist"`
	Genres      string    `json:"genres"` // comma-delimited
	Type        string    `json:"type"`
	ReleaseYear string    `json:"release_year"`
	Status      string    `json:"status"` // "OnGoing", "Completed", or anything else
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	Rating      string    `json:"rating"`
	Rank        string    `json:"rank"`
	CreatedAt   time.Time `json:"created_at"`
}

// GenreList splits the raw genre string into trimmed, non-empty tokens.
func (m Manga) GenreList() []string {
	if m.Genres == "" {
		return nil
	}
	var out []string
	for _, g := range strings.Split(m.Genres, ",") {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}

// RatingValue extracts the first decimal number of the free-text rating.
func (m Manga) RatingValue() string {
	return firstRun(m.Rating, "0123456789.")
}

// RankValue extracts the first integer of the free-text rank.
func (m Manga) RankValue() string {
	return firstRun(m.Rank, "0123456789")
}

func firstRun(s, charset string) string {
	start := strings.IndexAny(s, charset)
	if start < 0 {
		return ""
	}
	end := start
	for end < len(s) && strings.IndexByte(charset, s[end]) >= 0 {
		end++
	}
	return s[start:end]
}

// ChapterNumber is the chapter_number column kept as the exact decimal text
// delivered by the source. Two chapters are the same chapter only when their
// texts are equal, so "10.10" and "10.1" stay distinct.
type ChapterNumber string

// ParseChapterNumber validates s as a decimal number and returns it as a key.
func ParseChapterNumber(s string) (ChapterNumber, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty chapter number")
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return "", fmt.Errorf("invalid chapter number %q: %w", s, err)
	}
	return ChapterNumber(s), nil
}

// Float is used for ordering only, never for identity.
func (n ChapterNumber) Float() float64 {
	f, _ := strconv.ParseFloat(string(n), 64)
	return f
}

func (n ChapterNumber) String() string {
	return string(n)
}

// UnmarshalJSON keeps the literal text of a JSON number (or string).
func (n *ChapterNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = ChapterNumber(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return fmt.Errorf("chapter_number: %w", err)
	}
	*n = ChapterNumber(num.String())
	return nil
}

func (n ChapterNumber) MarshalJSON() ([]byte, error) {
	if n == "" {
		return []byte("null"), nil
	}
	return []byte(n), nil
}

type Chapter struct {
	ID            string        `json:"id"`
	MangaID       string        `json:"manga_id"`
	Title         string        `json:"title"`
	URL           string        `json:"url"`
	Number        ChapterNumber `json:"chapter_number"`
	PublishedDate string        `json:"published_date"`
	CreatedAt     time.Time     `json:"created_at"`
}

// TitleNumber is the first integer found in the chapter title, 0 when none.
func (c Chapter) TitleNumber() int {
	n, _ := strconv.Atoi(firstRun(c.Title, "0123456789"))
	return n
}

type ChapterImage struct {
	ID         string    `json:"id"`
	ChapterID  string    `json:"chapter_id"`
	ImageURL   string    `json:"image_url"`
	PageNumber int       `json:"page_number"`
	CreatedAt  time.Time `json:"created_at"`
}
