package pagination

import (
	"encoding/base64"
	"encoding/json"
	"time"
)

// Cursor marks the position of the last row of a page within a
// (sortValue, id) total order. SortValue is the row's sort column rendered
// as an ISO-8601 string; it may be nil when the column is NULL.
//
// The token itself carries no ordering semantics. Callers must apply the
// same sort order on every page or the cursor silently produces gaps or
// duplicates.
type Cursor struct {
	SortValue *string `json:"sortValue"`
	ID        int64   `json:"id"`
}

type wireCursor struct {
	SortValue *string `json:"sortValue"`
	ID        *int64  `json:"id"`
}

// Encode serializes the cursor as base64 of its JSON text.
func Encode(c Cursor) string {
	b, err := json.Marshal(c)
	if err != nil {
		// Cursor has no unmarshalable fields; this cannot happen.
		return ""
	}
	return base64.StdEncoding.EncodeToString(b)
}

// Decode parses a client-supplied token. It returns nil for anything
// malformed: empty input, invalid base64, invalid JSON, or a payload
// without a numeric id. Callers treat nil as "start from the beginning",
// never as an error.
func Decode(token string) *Cursor {
	if token == "" {
		return nil
	}
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil
	}
	var w wireCursor
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil
	}
	if w.ID == nil {
		return nil
	}
	return &Cursor{SortValue: w.SortValue, ID: *w.ID}
}

// After reports whether the row (sortValue, id) sorts strictly after the
// cursor position in descending (sortValue DESC, id DESC) order, i.e.
// whether the row belongs to a later page. NULL sort values order last.
//
// This is the in-memory counterpart of the SQL tuple comparison
// (sort_column, id) < (cursor.sortValue, cursor.id); memory repositories
// use it so their page boundaries match the Postgres ones.
func (c Cursor) After(sortValue *string, id int64) bool {
	switch {
	case c.SortValue == nil && sortValue == nil:
		return id < c.ID
	case c.SortValue == nil:
		// Cursor sits in the NULL tail; non-NULL rows sort before it.
		return false
	case sortValue == nil:
		return true
	case *sortValue != *c.SortValue:
		return sortsBefore(*sortValue, *c.SortValue, id, c.ID)
	default:
		return id < c.ID
	}
}

// sortsBefore compares two sort values as timestamps when both parse.
// RFC3339Nano trims trailing zeros in the fraction, so "00.5Z" and
// "00.52Z" misorder under plain string comparison; instants do not.
func sortsBefore(row, cursor string, rowID, cursorID int64) bool {
	rt, rerr := time.Parse(time.RFC3339Nano, row)
	ct, cerr := time.Parse(time.RFC3339Nano, cursor)
	if rerr != nil || cerr != nil {
		return row < cursor
	}
	if rt.Equal(ct) {
		return rowID < cursorID
	}
	return rt.Before(ct)
}
