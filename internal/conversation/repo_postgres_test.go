package conversation

import (
	"strings"
	"testing"
	"time"

	"msgdesk/internal/pagination"
)

func TestCursorWhereKeepsNeverMessagedTail(t *testing.T) {
	v := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC).Format(time.RFC3339Nano)
	frag, args := cursorWhere(&pagination.Cursor{SortValue: &v, ID: 42}, []any{int64(1), StateActive})

	// Rows with a NULL last_message_at sort after every timestamped cursor;
	// dropping the guard would make them vanish from page 2 onward.
	if !strings.Contains(frag, "cv.last_message_at IS NULL OR") {
		t.Fatalf("timestamped cursor must keep never-messaged conversations: %q", frag)
	}
	if !strings.Contains(frag, "(cv.last_message_at, cv.id) < ($3, $4)") {
		t.Fatalf("unexpected tuple comparison: %q", frag)
	}
	if len(args) != 4 {
		t.Fatalf("expected 4 args, got %d", len(args))
	}
}

func TestCursorWhereInsideNullTail(t *testing.T) {
	frag, args := cursorWhere(&pagination.Cursor{ID: 42}, []any{int64(1), StateActive})

	if !strings.Contains(frag, "cv.last_message_at IS NULL AND cv.id < $3") {
		t.Fatalf("null-tail cursor must page by id only: %q", frag)
	}
	if len(args) != 3 {
		t.Fatalf("expected 3 args, got %d", len(args))
	}
}

func TestCursorWhereMalformedTimestamp(t *testing.T) {
	v := "not-a-time"
	frag, args := cursorWhere(&pagination.Cursor{SortValue: &v, ID: 42}, []any{int64(1)})

	if frag != "" || len(args) != 1 {
		t.Fatalf("malformed timestamp must add no predicate: %q with %d args", frag, len(args))
	}
}
