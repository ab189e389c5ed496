package notifications

import (
	"context"
	"testing"

	"github.com/yungbote/apns-backend/internal/data/repos/testutil"
	types "github.com/yungbote/apns-backend/internal/domain"
	"github.com/yungbote/apns-backend/internal/domain/roster"
)

func TestNotificationRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewNotificationRepo(db, testutil.Logger(t))
	ctx := context.Background()

	senior := testutil.SeedStudent(t, ctx, tx, "R1", 4)
	noSem := &types.Student{RollNo: "R2", Name: "No Semester", IsActive: true}
	if err := tx.Create(noSem).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	first := &types.Notification{StudentID: senior.ID, Message: "first", Status: roster.NotificationPending}
	if err := repo.Create(ctx, tx, first); err != nil {
		t.Fatalf("Create: %v", err)
	}
	second := &types.Notification{StudentID: noSem.ID, Message: "second", Status: roster.NotificationSent}
	if err := repo.Create(ctx, tx, second); err != nil {
		t.Fatalf("Create: %v", err)
	}
	third := &types.Notification{StudentID: senior.ID, Message: "third", Status: roster.NotificationPending}
	if err := repo.Create(ctx, tx, third); err != nil {
		t.Fatalf("Create: %v", err)
	}

	views, err := repo.ListWithStudents(ctx, tx)
	if err != nil {
		t.Fatalf("ListWithStudents: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("ListWithStudents: expected 3, got %d", len(views))
	}
	if views[0].ID != third.ID || views[2].ID != first.ID {
		t.Fatalf("ListWithStudents: expected newest id first, got %+v", views)
	}
	// senior is seeded in semester 5.
	if views[0].Severity != "Medium" || views[0].StudentName != senior.Name {
		t.Fatalf("ListWithStudents: unexpected view %+v", views[0])
	}
	if views[1].Severity != "Low" || views[1].Semester != nil {
		t.Fatalf("ListWithStudents: expected Low severity without semester, got %+v", views[1])
	}

	recent, err := repo.ListForStudent(ctx, tx, senior.ID, 1)
	if err != nil {
		t.Fatalf("ListForStudent: %v", err)
	}
	if len(recent) != 1 || recent[0].Message != "third" {
		t.Fatalf("ListForStudent: unexpected %+v", recent)
	}

	count, err := repo.CountForStudent(ctx, tx, senior.ID)
	if err != nil {
		t.Fatalf("CountForStudent: %v", err)
	}
	if count != 2 {
		t.Fatalf("CountForStudent: expected 2, got %d", count)
	}
}
