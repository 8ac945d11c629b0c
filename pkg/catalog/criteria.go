package catalog

import (
	"strings"

	"github.com/kerbaras/mangareader/pkg/data"
)

// Known status values. Any other string is accepted by the filter and simply
// matches entries carrying that status.
const (
	StatusOnGoing   = "OnGoing"
	StatusCompleted = "Completed"
)

// Criteria holds the active query, genre and status selections. The empty
// string means "no constraint" for that dimension.
type Criteria struct {
	Query  string `json:"query"`
	Genre  string `json:"genre"`
	Status string `json:"status"`
}

// IsZero reports whether no criterion is set.
func (c Criteria) IsZero() bool {
	return c == Criteria{}
}

// Matches reports whether m passes all three predicates.
func (c Criteria) Matches(m data.Manga) bool {
	if c.Query != "" {
		q := strings.ToLower(c.Query)
		if !strings.Contains(strings.ToLower(m.Title), q) &&
			(m.Alternative == "" || !strings.Contains(strings.ToLower(m.Alternative), q)) {
			return false
		}
	}

	// Partial match against the raw genre string, not set membership.
	if c.Genre != "" && !strings.Contains(strings.ToLower(m.Genres), strings.ToLower(c.Genre)) {
		return false
	}

	if c.Status != "" && (m.Status == "" || strings.ToLower(m.Status) != strings.ToLower(c.Status)) {
		return false
	}

	return true
}

// Filter returns the entries matching c in their original order. With zero
// criteria the input slice is returned as is.
func Filter(entries []data.Manga, c Criteria) []data.Manga {
	if c.IsZero() {
		return entries
	}
	out := make([]data.Manga, 0, len(entries))
	for _, m := range entries {
		if c.Matches(m) {
			out = append(out, m)
		}
	}
	return out
}
