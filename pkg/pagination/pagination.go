// Package pagination implements the "load more" window used by list views:
// a visible prefix that grows one page at a time.
package pagination

// Window is an immutable visible-prefix cursor. Its limit is always a
// positive multiple of its page size.
type Window struct {
	pageSize int
	limit    int
}

// NewWindow returns a window showing exactly one page. A page size below 1
// is treated as 1.
func NewWindow(pageSize int) Window {
	if pageSize < 1 {
		pageSize = 1
	}
	return Window{pageSize: pageSize, limit: pageSize}
}

// PageSize returns the growth increment.
func (w Window) PageSize() int {
	return w.pageSize
}

// Limit returns the requested number of visible items.
func (w Window) Limit() int {
	return w.limit
}

// Grow returns the window extended by one page.
func (w Window) Grow() Window {
	w.limit += w.pageSize
	return w
}

// Reset returns the window shrunk back to one page.
func (w Window) Reset() Window {
	w.limit = w.pageSize
	return w
}

// Visible returns how many of total items the window shows.
func (w Window) Visible(total int) int {
	return min(w.limit, max(total, 0))
}

// HasMore reports whether total items extend past the window.
func (w Window) HasMore(total int) bool {
	return w.limit < total
}

// Apply returns the visible prefix of items. The result shares the backing
// array of items.
func Apply[T any](items []T, w Window) []T {
	return items[:w.Visible(len(items))]
}
