package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/yungbote/apns-backend/internal/data/memstore"
	"github.com/yungbote/apns-backend/internal/data/repos/testutil"
	"github.com/yungbote/apns-backend/internal/domain/roster"
)

func TestNotificationCreate(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	student := testutil.SeedStudent(t, ctx, f.db, "N1", 2)

	_, err := f.notifications.Create(ctx, CreateNotificationInput{StudentID: student.ID})
	wantAPIError(t, err, http.StatusBadRequest, "student_id and message are required")
	_, err = f.notifications.Create(ctx, CreateNotificationInput{Message: "orphan"})
	wantAPIError(t, err, http.StatusBadRequest, "student_id and message are required")
	_, err = f.notifications.Create(ctx, CreateNotificationInput{StudentID: student.ID, Message: "x", Status: strp("lost")})
	wantAPIError(t, err, http.StatusBadRequest, "")

	pending, err := f.notifications.Create(ctx, CreateNotificationInput{StudentID: student.ID, Message: "please clear arrears"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if pending.ID == 0 || pending.Status != roster.NotificationPending || pending.SentAt != nil {
		t.Fatalf("unexpected pending notification: %+v", pending)
	}

	sent, err := f.notifications.Create(ctx, CreateNotificationInput{StudentID: student.ID, Message: "sent now", Status: strp("sent")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sent.SentAt == nil {
		t.Fatalf("sent notification must carry sent_at")
	}

	_, err = f.notifications.Create(ctx, CreateNotificationInput{StudentID: 9999, Message: "ghost"})
	wantAPIError(t, err, http.StatusNotFound, "Student not found")
	if !f.status.Connected() {
		t.Fatalf("a rejected insert must not mark the store down")
	}
}

func TestNotificationListJoinsStudents(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	student := testutil.SeedStudent(t, ctx, f.db, "N2", 4)
	testutil.SeedNotification(t, ctx, f.db, student.ID, "older")
	testutil.SeedNotification(t, ctx, f.db, student.ID, "newer")

	views, err := f.notifications.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(views) != 2 || views[0].Message != "newer" {
		t.Fatalf("unexpected views: %+v", views)
	}
	if views[0].StudentName != "Student N2" || views[0].Severity != "Medium" {
		t.Fatalf("unexpected join: %+v", views[0])
	}
}

func TestNotificationServiceMemoryMode(t *testing.T) {
	t.Parallel()

	f := newMemoryFixture(t, memstore.NewSeeded())
	ctx := context.Background()

	sent, err := f.notifications.Create(ctx, CreateNotificationInput{StudentID: 1, Message: "arrears", Status: strp("sent")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sent.ID != 1 || sent.SentAt == nil {
		t.Fatalf("unexpected memory notification: %+v", sent)
	}
	if _, err := f.notifications.Create(ctx, CreateNotificationInput{StudentID: 77, Message: "orphan"}); err != nil {
		t.Fatalf("Create orphan: %v", err)
	}

	views, err := f.notifications.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("len=%d", len(views))
	}
	if views[0].StudentName != "Unknown" || views[1].StudentName != "Arjun Kumar" || views[1].Severity != "Critical" {
		t.Fatalf("unexpected views: %+v", views)
	}
}
