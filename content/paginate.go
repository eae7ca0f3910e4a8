package content

import (
	"sort"
	"strconv"
)

// DefaultPerPage is the listing page size when none is configured.
const DefaultPerPage = 10

// Page is one page of a listing.
type Page struct {
	Posts   []Post
	Current int // 1-based
	MaxPage int
	Total   int
}

// HasPrev reports whether a previous page exists.
func (p Page) HasPrev() bool { return p.Current > 1 }

// HasNext reports whether a following page exists.
func (p Page) HasNext() bool { return p.Current < p.MaxPage }

// SortByDate orders posts newest first, breaking ties by slug. It sorts a copy.
func SortByDate(posts []Post) []Post {
	sorted := make([]Post, len(posts))
	copy(sorted, posts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.After(sorted[j].Date)
		}
		return sorted[i].Slug < sorted[j].Slug
	})
	return sorted
}

// MaxPage returns the number of pages needed for total posts. An empty listing
// still has one (empty) page.
func MaxPage(total, perPage int) int {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if total <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

// Paginate slices posts into page current. ok is false when current is out of range.
func Paginate(posts []Post, perPage, current int) (Page, bool) {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	maxPage := MaxPage(len(posts), perPage)
	if current < 1 || current > maxPage {
		return Page{Current: current, MaxPage: maxPage, Total: len(posts)}, false
	}
	start := (current - 1) * perPage
	end := start + perPage
	if end > len(posts) {
		end = len(posts)
	}
	return Page{
		Posts:   posts[start:end],
		Current: current,
		MaxPage: maxPage,
		Total:   len(posts),
	}, true
}

// PageURL returns the listing path for page n: "/" for the first page and
// "/page/n/" after that.
func PageURL(n int) string {
	if n <= 1 {
		return "/"
	}
	return "/page/" + strconv.Itoa(n) + "/"
}
