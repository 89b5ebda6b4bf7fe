package pagination

import (
	"encoding/base64"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestCursor_RoundTrip(t *testing.T) {
	cases := []Cursor{
		{SortValue: strPtr("2024-03-01T10:00:00Z"), ID: 42},
		{SortValue: strPtr(""), ID: 1},
		{SortValue: nil, ID: 7},
		{SortValue: strPtr("2024-03-01T10:00:00Z"), ID: 0},
	}
	for _, c := range cases {
		got := Decode(Encode(c))
		if got == nil {
			t.Fatalf("decode returned nil for %+v", c)
		}
		if got.ID != c.ID {
			t.Fatalf("id mismatch: got %d want %d", got.ID, c.ID)
		}
		switch {
		case c.SortValue == nil && got.SortValue != nil:
			t.Fatalf("expected nil sort value, got %q", *got.SortValue)
		case c.SortValue != nil && (got.SortValue == nil || *got.SortValue != *c.SortValue):
			t.Fatalf("sort value mismatch for %+v", c)
		}
	}
}

func TestDecode_RejectsGarbage(t *testing.T) {
	cases := []string{
		"",
		"not base64 at all!!!",
		base64.StdEncoding.EncodeToString([]byte("not json")),
		base64.StdEncoding.EncodeToString([]byte(`{"sortValue":"x"}`)),          // no id
		base64.StdEncoding.EncodeToString([]byte(`{"sortValue":"x","id":"y"}`)), // non-numeric id
		base64.StdEncoding.EncodeToString([]byte(`[]`)),
	}
	for _, tok := range cases {
		if got := Decode(tok); got != nil {
			t.Fatalf("expected nil for %q, got %+v", tok, got)
		}
	}
}

func TestCursor_After(t *testing.T) {
	cur := Cursor{SortValue: strPtr("2024-03-02T00:00:00Z"), ID: 10}

	// Older sort value belongs to a later page.
	if !cur.After(strPtr("2024-03-01T00:00:00Z"), 99) {
		t.Fatalf("older sort value should be after cursor")
	}
	// Same sort value: id breaks the tie.
	if !cur.After(strPtr("2024-03-02T00:00:00Z"), 9) {
		t.Fatalf("same sort value, smaller id should be after cursor")
	}
	if cur.After(strPtr("2024-03-02T00:00:00Z"), 10) {
		t.Fatalf("the cursor row itself must be excluded")
	}
	if cur.After(strPtr("2024-03-03T00:00:00Z"), 1) {
		t.Fatalf("newer sort value belongs to an earlier page")
	}
	// NULLs sort last in descending order.
	if !cur.After(nil, 1) {
		t.Fatalf("NULL sort value should be after any non-NULL cursor")
	}

	nullCur := Cursor{SortValue: nil, ID: 5}
	if nullCur.After(strPtr("2024-03-01T00:00:00Z"), 1) {
		t.Fatalf("non-NULL rows sort before a NULL cursor")
	}
	if !nullCur.After(nil, 4) {
		t.Fatalf("within the NULL tail, id orders rows")
	}
}

func TestCursor_AfterFractionalSeconds(t *testing.T) {
	// RFC3339Nano drops trailing fraction zeros, so ".5Z" compares greater
	// than ".52Z" as a string although it is the earlier instant.
	cur := Cursor{SortValue: strPtr("2024-01-01T00:00:00.52Z"), ID: 10}

	if !cur.After(strPtr("2024-01-01T00:00:00.5Z"), 99) {
		t.Fatalf("row older than the cursor must appear on a later page")
	}
	if cur.After(strPtr("2024-01-01T00:00:00.8Z"), 1) {
		t.Fatalf("row newer than the cursor belongs to an earlier page")
	}

	// Equivalent renderings of one instant fall back to the id tiebreak.
	if !cur.After(strPtr("2024-01-01T00:00:00.520Z"), 9) {
		t.Fatalf("same instant, smaller id should be after cursor")
	}
	if cur.After(strPtr("2024-01-01T00:00:00.520Z"), 11) {
		t.Fatalf("same instant, larger id belongs to an earlier page")
	}
}

func TestNewPage(t *testing.T) {
	type row struct {
		id int64
		at string
	}
	cursorOf := func(r row) Cursor { return Cursor{SortValue: strPtr(r.at), ID: r.id} }

	rows := []row{{3, "c"}, {2, "b"}, {1, "a"}}

	p := NewPage(rows, 2, cursorOf)
	if !p.HasMore || p.NextCursor == nil {
		t.Fatalf("expected hasMore with next cursor")
	}
	if len(p.Items) != 2 || p.Items[1].id != 2 {
		t.Fatalf("expected extra row dropped, got %+v", p.Items)
	}
	if got := Decode(*p.NextCursor); got == nil || got.ID != 2 {
		t.Fatalf("next cursor should point at last returned row, got %+v", got)
	}

	p = NewPage(rows, 3, cursorOf)
	if p.HasMore || p.NextCursor != nil {
		t.Fatalf("exact-limit fetch must not report more")
	}

	p = NewPage(nil, 5, cursorOf)
	if p.Items == nil || len(p.Items) != 0 || p.HasMore {
		t.Fatalf("empty result must be an empty page, got %+v", p)
	}
}

func TestDefaultLimit(t *testing.T) {
	if DefaultLimit(0) != 20 || DefaultLimit(-3) != 20 {
		t.Fatalf("non-positive limits should default")
	}
	if DefaultLimit(500) != 100 {
		t.Fatalf("limits should be capped")
	}
	if DefaultLimit(7) != 7 {
		t.Fatalf("in-range limit should pass through")
	}
}
