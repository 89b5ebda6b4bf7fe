package note

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"
)

type stubContacts struct {
	known map[int64]bool
}

func (s stubContacts) Exists(_ context.Context, _ int64, id int64) (bool, error) {
	return s.known[id], nil
}

func newService() *Service {
	return NewService(NewMemoryRepo(), stubContacts{known: map[int64]bool{7: true}})
}

func TestCreateAndGetNote(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	n, err := svc.Create(ctx, 1, 10, 7, "  follow up on invoice  ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if n.ID != 1 || n.Body != "follow up on invoice" || n.AuthorUserID != 10 {
		t.Fatalf("note = %+v", n)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	cases := []struct {
		name      string
		companyID int64
		contactID int64
		body      string
	}{
		{"empty body", 1, 7, "   "},
		{"unknown contact", 1, 8, "hi"},
		{"zero company", 0, 7, "hi"},
		{"oversized body", 1, 7, strings.Repeat("x", maxBodyLength+1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, tc.companyID, 10, tc.contactID, tc.body); !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("err = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestUpdateOnlyByAuthor(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	n, err := svc.Create(ctx, 1, 10, 7, "v1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Update(ctx, 1, 11, n.ID, "v2"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("non-author update err = %v", err)
	}

	got, err := svc.Update(ctx, 1, 10, n.ID, "v2")
	if err != nil {
		t.Fatalf("author update: %v", err)
	}
	if got.Body != "v2" {
		t.Fatalf("body = %q", got.Body)
	}
}

func TestDeleteHidesNote(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	n, err := svc.Create(ctx, 1, 10, 7, "gone soon")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, 1, n.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, 1, n.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v", err)
	}

	page, err := svc.List(ctx, 1, 7, ListRequest{Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 0 {
		t.Fatalf("items = %d after delete", len(page.Items))
	}
}

func TestListPaginatesNewestFirst(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo, stubContacts{known: map[int64]bool{7: true}})
	ctx := context.Background()

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	svc.clock = func() time.Time { n++; return base.Add(time.Duration(n) * time.Second) }

	for i := 0; i < 5; i++ {
		if _, err := svc.Create(ctx, 1, 10, 7, "note "+strconv.Itoa(i)); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	var seen []int64
	cursor := ""
	for {
		page, err := svc.List(ctx, 1, 7, ListRequest{Cursor: cursor, Limit: 2})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		for _, it := range page.Items {
			seen = append(seen, it.ID)
		}
		if !page.HasMore {
			break
		}
		cursor = *page.NextCursor
	}

	if len(seen) != 5 {
		t.Fatalf("saw %d notes, want 5", len(seen))
	}
	for i := 1; i < len(seen); i++ {
		if seen[i] >= seen[i-1] {
			t.Fatalf("order not newest-first: %v", seen)
		}
	}
}
