package services

import (
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/apns-backend/internal/data/db"
	"github.com/yungbote/apns-backend/internal/data/memstore"
	"github.com/yungbote/apns-backend/internal/data/repos"
	"github.com/yungbote/apns-backend/internal/data/repos/testutil"
	"github.com/yungbote/apns-backend/internal/platform/apierr"
)

type fixture struct {
	db            *gorm.DB
	status        *db.Status
	users         repos.UserRepo
	auth          AuthService
	students      StudentService
	notifications NotificationService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	gdb := testutil.DB(t)
	return newFixtureWith(t, gdb, db.NewStatus(gdb, nil), memstore.NewSeeded())
}

// newMemoryFixture has no database at all.
func newMemoryFixture(t *testing.T, mem *memstore.Store) fixture {
	t.Helper()
	return newFixtureWith(t, nil, db.NewStatus(nil, nil), mem)
}

func newFixtureWith(t *testing.T, gdb *gorm.DB, status *db.Status, mem *memstore.Store) fixture {
	t.Helper()
	log := testutil.Logger(t)
	users := repos.NewUserRepo(gdb, log)
	studentRepo := repos.NewStudentRepo(gdb, log)
	notificationRepo := repos.NewNotificationRepo(gdb, log)
	alertRepo := repos.NewAlertActionRepo(gdb, log)
	return fixture{
		db:            gdb,
		status:        status,
		users:         users,
		auth:          NewAuthService(log, status, users, "test-secret", 0),
		students:      NewStudentService(log, status, mem, studentRepo, notificationRepo, alertRepo, 0),
		notifications: NewNotificationService(log, status, mem, notificationRepo, 0),
	}
}

func wantAPIError(t *testing.T, err error, status int, msg string) {
	t.Helper()
	ae, ok := apierr.As(err)
	if !ok {
		t.Fatalf("err=%v want *apierr.Error", err)
	}
	if ae.Status != status {
		t.Fatalf("status=%d want %d (%v)", ae.Status, status, err)
	}
	if msg != "" && ae.Error() != msg {
		t.Fatalf("message=%q want %q", ae.Error(), msg)
	}
}

func strp(s string) *string { return &s }
func intp(v int) *int { return &v }
