package catalog

import "github.com/kerbaras/mangareader/pkg/data"

const (
	// PageSize is the number of entries shown per catalog page.
	PageSize = 20

	// pageWindowRadius is how many page numbers are offered on each side of
	// the current page.
	pageWindowRadius = 2
)

// TotalPages returns max(1, ceil(n/PageSize)).
func TotalPages(n int) int {
	if n <= 0 {
		return 1
	}
	return (n + PageSize - 1) / PageSize
}

// ClampPage keeps page within [1, total].
func ClampPage(page, total int) int {
	if total < 1 {
		total = 1
	}
	if page > total {
		page = total
	}
	if page < 1 {
		page = 1
	}
	return page
}

// PageSlice returns the entries shown on page. The page is clamped first.
func PageSlice(entries []data.Manga, page int) []data.Manga {
	page = ClampPage(page, TotalPages(len(entries)))
	start := (page - 1) * PageSize
	if start >= len(entries) {
		return []data.Manga{}
	}
	end := min(start+PageSize, len(entries))
	return entries[start:end]
}

// PageWindow lists the selectable page numbers around current, clipped to
// [1, total].
func PageWindow(current, total int) []int {
	current = ClampPage(current, total)
	first := max(1, current-pageWindowRadius)
	last := min(total, current+pageWindowRadius)

	pages := make([]int, 0, last-first+1)
	for p := first; p <= last; p++ {
		pages = append(pages, p)
	}
	return pages
}
