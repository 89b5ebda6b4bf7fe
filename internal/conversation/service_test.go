package conversation

import (
	"context"
	"testing"
	"time"
)

func newTestService() (*Service, *MemoryRepo) {
	repo := NewMemoryRepo()
	svc := NewService(repo, nil)
	svc.clock = func() time.Time { return time.Unix(1700000000, 0).UTC() }
	return svc, repo
}

func TestResolveCreatesOnceThenReuses(t *testing.T) {
	svc, _ := newTestService()

	first, err := svc.Resolve(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if first.ID != 1 || first.Status != StatusActive || first.UnreadCount != 0 {
		t.Fatalf("unexpected conversation: %+v", first)
	}

	second, err := svc.Resolve(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("resolve again: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same conversation, got %d and %d", first.ID, second.ID)
	}

	other, _ := svc.Resolve(context.Background(), 2, 10)
	if other.ID == first.ID {
		t.Fatalf("same contact id in different companies must be distinct conversations")
	}
}

func TestListOrdersByLastMessageNullsLast(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	// Three conversations; give the first two summaries so the one without
	// a last message sorts after them.
	for contactID := int64(1); contactID <= 3; contactID++ {
		if _, err := svc.Resolve(ctx, 1, contactID); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	base := time.Unix(1700000100, 0).UTC()
	repo.ApplySummary(ctx, 1, 1, "first", base, 1, false)
	repo.ApplySummary(ctx, 1, 2, "second", base.Add(time.Minute), 2, false)

	page, err := svc.List(ctx, 1, ListRequest{Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 3 {
		t.Fatalf("expected 3 conversations, got %d", len(page.Items))
	}
	if page.Items[0].ID != 2 || page.Items[1].ID != 1 || page.Items[2].ID != 3 {
		t.Fatalf("wrong order: %d, %d, %d", page.Items[0].ID, page.Items[1].ID, page.Items[2].ID)
	}
}

func TestListPaginatesAcrossSummaryGaps(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	const n = 5
	base := time.Unix(1700000100, 0).UTC()
	for contactID := int64(1); contactID <= n; contactID++ {
		cv, err := svc.Resolve(ctx, 1, contactID)
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		// Leave every other conversation without a last message.
		if contactID%2 == 1 {
			repo.ApplySummary(ctx, 1, cv.ID, "msg", base.Add(time.Duration(contactID)*time.Second), contactID, false)
		}
	}

	seen := map[int64]bool{}
	cursor := ""
	for {
		page, err := svc.List(ctx, 1, ListRequest{Cursor: cursor, Limit: 2})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		for _, cv := range page.Items {
			if seen[cv.ID] {
				t.Fatalf("duplicate conversation %d", cv.ID)
			}
			seen[cv.ID] = true
		}
		if !page.HasMore {
			break
		}
		cursor = *page.NextCursor
	}
	if len(seen) != n {
		t.Fatalf("expected %d conversations, saw %d", n, len(seen))
	}
}

func TestListFilters(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	a, _ := svc.Resolve(ctx, 1, 1)
	b, _ := svc.Resolve(ctx, 1, 2)
	repo.SetContactProjection(a.ID, "+15551230001", "Ada Lovelace")
	repo.SetContactProjection(b.ID, "+15551230002", "Grace Hopper")

	if err := svc.Archive(ctx, 1, 99, b.ID); err != nil {
		t.Fatalf("archive: %v", err)
	}
	agent := int64(7)
	if err := svc.Assign(ctx, 1, 99, a.ID, &agent); err != nil {
		t.Fatalf("assign: %v", err)
	}

	page, _ := svc.List(ctx, 1, ListRequest{Status: "archived", Limit: 10})
	if len(page.Items) != 1 || page.Items[0].ID != b.ID {
		t.Fatalf("archived filter: %+v", page.Items)
	}

	page, _ = svc.List(ctx, 1, ListRequest{Assignee: &agent, Limit: 10})
	if len(page.Items) != 1 || page.Items[0].ID != a.ID {
		t.Fatalf("assignee filter: %+v", page.Items)
	}

	page, _ = svc.List(ctx, 1, ListRequest{Search: "lovelace", Limit: 10})
	if len(page.Items) != 1 || page.Items[0].ID != a.ID {
		t.Fatalf("name search: %+v", page.Items)
	}
	page, _ = svc.List(ctx, 1, ListRequest{Search: "0002", Limit: 10})
	if len(page.Items) != 1 || page.Items[0].ID != b.ID {
		t.Fatalf("phone search: %+v", page.Items)
	}

	if _, err := svc.List(ctx, 1, ListRequest{Status: "open"}); err != ErrInvalidArgument {
		t.Fatalf("unknown status must be rejected, got %v", err)
	}
}

func TestArchiveUnarchiveRoundTrip(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	cv, _ := svc.Resolve(ctx, 1, 1)
	if err := svc.Archive(ctx, 1, 99, cv.ID); err != nil {
		t.Fatalf("archive: %v", err)
	}
	got, _ := svc.Get(ctx, 1, cv.ID)
	if got.Status != StatusArchived {
		t.Fatalf("expected archived, got %s", got.Status)
	}

	if err := svc.Unarchive(ctx, 1, 99, cv.ID); err != nil {
		t.Fatalf("unarchive: %v", err)
	}
	got, _ = svc.Get(ctx, 1, cv.ID)
	if got.Status != StatusActive {
		t.Fatalf("expected active, got %s", got.Status)
	}

	if err := svc.Archive(ctx, 2, 99, cv.ID); err != ErrNotFound {
		t.Fatalf("cross-company archive must be invisible, got %v", err)
	}
}

func TestMarkReadResetsUnread(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	cv, _ := svc.Resolve(ctx, 1, 1)
	repo.ApplySummary(ctx, 1, cv.ID, "hi", time.Unix(1700000100, 0).UTC(), 1, true)
	repo.ApplySummary(ctx, 1, cv.ID, "there", time.Unix(1700000101, 0).UTC(), 2, true)

	got, _ := svc.Get(ctx, 1, cv.ID)
	if got.UnreadCount != 2 {
		t.Fatalf("expected unread 2, got %d", got.UnreadCount)
	}

	if err := svc.MarkRead(ctx, 1, cv.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	got, _ = svc.Get(ctx, 1, cv.ID)
	if got.UnreadCount != 0 {
		t.Fatalf("expected unread 0, got %d", got.UnreadCount)
	}
	if got.LastMessagePreview != "there" {
		t.Fatalf("mark read must not touch the summary, got %q", got.LastMessagePreview)
	}
}

func TestAssignAndUnassign(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	cv, _ := svc.Resolve(ctx, 1, 1)
	agent := int64(7)
	if err := svc.Assign(ctx, 1, 99, cv.ID, &agent); err != nil {
		t.Fatalf("assign: %v", err)
	}
	got, _ := svc.Get(ctx, 1, cv.ID)
	if got.AssigneeUserID == nil || *got.AssigneeUserID != agent {
		t.Fatalf("expected assignee %d, got %+v", agent, got.AssigneeUserID)
	}

	if err := svc.Assign(ctx, 1, 99, cv.ID, nil); err != nil {
		t.Fatalf("unassign: %v", err)
	}
	got, _ = svc.Get(ctx, 1, cv.ID)
	if got.AssigneeUserID != nil {
		t.Fatalf("expected unassigned, got %d", *got.AssigneeUserID)
	}

	bad := int64(0)
	if err := svc.Assign(ctx, 1, 99, cv.ID, &bad); err != ErrInvalidArgument {
		t.Fatalf("zero assignee must be rejected, got %v", err)
	}
}

func TestDeleteHidesConversation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	cv, _ := svc.Resolve(ctx, 1, 1)
	if err := svc.Delete(ctx, 1, 99, cv.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, 1, cv.ID); err != ErrNotFound {
		t.Fatalf("deleted conversation must be invisible, got %v", err)
	}
	page, _ := svc.List(ctx, 1, ListRequest{Limit: 10})
	if len(page.Items) != 0 {
		t.Fatalf("deleted conversation must not be listed")
	}

	// Resolving the same contact again starts a fresh conversation.
	again, err := svc.Resolve(ctx, 1, 1)
	if err != nil {
		t.Fatalf("resolve after delete: %v", err)
	}
	if again.ID == cv.ID {
		t.Fatalf("expected a new conversation after delete")
	}
}

func TestGarbageCursorStartsOver(t *testing.T) {
	svc, _ := newTestService()
	svc.Resolve(context.Background(), 1, 1)

	page, err := svc.List(context.Background(), 1, ListRequest{Cursor: "!!not-a-cursor!!", Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 1 {
		t.Fatalf("garbage cursor should behave as first page, got %d items", len(page.Items))
	}
}
