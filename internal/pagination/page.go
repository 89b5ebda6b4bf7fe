package pagination

// Page is the uniform result shape of every cursor-paginated list query.
type Page[T any] struct {
	Items      []T     `json:"items"`
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

// DefaultLimit applies the shared page-size policy: non-positive limits
// fall back to 20, and limits are capped at 100.
func DefaultLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}

// NewPage builds a Page from rows fetched with the limit+1 pattern.
// If more than limit rows came back, the extra row is dropped, HasMore is
// set, and NextCursor points at the last returned row. An empty slice
// yields an empty page, never an error.
func NewPage[T any](rows []T, limit int, cursorOf func(T) Cursor) Page[T] {
	p := Page[T]{Items: rows}
	if len(rows) > limit {
		p.Items = rows[:limit]
		p.HasMore = true
		tok := Encode(cursorOf(p.Items[limit-1]))
		p.NextCursor = &tok
	}
	if p.Items == nil {
		p.Items = []T{}
	}
	return p
}
