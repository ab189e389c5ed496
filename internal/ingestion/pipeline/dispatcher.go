package pipeline

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/apns-backend/internal/data/db"
	"github.com/yungbote/apns-backend/internal/data/repos"
	types "github.com/yungbote/apns-backend/internal/domain"
	"github.com/yungbote/apns-backend/internal/domain/roster"
	"github.com/yungbote/apns-backend/internal/ingestion/columns"
	"github.com/yungbote/apns-backend/internal/ingestion/parser"
	"github.com/yungbote/apns-backend/internal/ingestion/risk"
	"github.com/yungbote/apns-backend/internal/platform/logger"
)

const defaultQueryTimeout = 3 * time.Second

// Dispatcher upserts resolved rows and raises parent alerts for high-risk
// students. Each row is written in its own transaction.
type Dispatcher struct {
	db            *gorm.DB
	status        *db.Status
	students      repos.StudentRepo
	notifications repos.NotificationRepo
	alerts        repos.AlertActionRepo
	log           *logger.Logger
	queryTimeout  time.Duration
	now           func() time.Time
}

func NewDispatcher(
	gdb *gorm.DB,
	status *db.Status,
	students repos.StudentRepo,
	notifications repos.NotificationRepo,
	alerts repos.AlertActionRepo,
	baseLog *logger.Logger,
	queryTimeout time.Duration,
) *Dispatcher {
	if queryTimeout <= 0 {
		queryTimeout = defaultQueryTimeout
	}
	return &Dispatcher{
		db:            gdb,
		status:        status,
		students:      students,
		notifications: notifications,
		alerts:        alerts,
		log:           baseLog.With("service", "AlertDispatcher"),
		queryTimeout:  queryTimeout,
		now:           time.Now,
	}
}

// Persist writes every resolvable record. It never fails the caller: a bad
// row is logged and skipped, and a lost connection marks the store down and
// ends the run with whatever was saved so far.
func (d *Dispatcher) Persist(ctx context.Context, records []parser.Record) risk.Outcome {
	var out risk.Outcome
	if d == nil || d.db == nil || !d.status.Connected() {
		return out
	}

	for i, rec := range records {
		if ctx.Err() != nil {
			d.log.Warn("persistence cancelled", "row", i, "error", ctx.Err())
			break
		}
		payload, ok := columns.Resolve(rec)
		if !ok {
			continue
		}
		actions, err := d.persistOne(ctx, payload)
		if err != nil {
			if d.status.Observe(err) {
				d.log.Error("store unavailable, stopping persistence", "row", i, "error", err)
				break
			}
			d.log.Warn("row persist failed", "row", i, "roll_no", payload.RollNo, "error", err)
			continue
		}
		out.Saved++
		out.HighRiskActions += actions
	}
	return out
}

func (d *Dispatcher) persistOne(ctx context.Context, payload columns.StudentPayload) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, d.queryTimeout)
	defer cancel()

	actions := 0
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stored, err := d.students.Upsert(ctx, tx, payload.ToStudent())
		if err != nil {
			return fmt.Errorf("upsert student: %w", err)
		}
		if !stored.HighRisk() {
			return nil
		}

		now := d.now().UTC()
		msg := fmt.Sprintf("High risk alert: %s has %d arrears. Immediate parent communication required.", stored.Name, stored.ArrearsCount)
		n := &types.Notification{
			StudentID:        stored.ID,
			Message:          msg,
			Status:           roster.NotificationSent,
			NotificationType: roster.NotificationTypeArrear,
			Priority:         roster.PriorityCritical,
			SentAt:           &now,
		}
		if err := d.notifications.Create(ctx, tx, n); err != nil {
			return fmt.Errorf("create notification: %w", err)
		}

		recipient := roster.PlaceholderRecipient
		if stored.ParentPhone != nil && *stored.ParentPhone != "" {
			recipient = *stored.ParentPhone
		}
		created, err := d.alerts.Create(ctx, tx, []*types.AlertAction{
			d.sentAction(stored.ID, n.ID, roster.ChannelSMS, recipient, msg, now),
			d.sentAction(stored.ID, n.ID, roster.ChannelCall, recipient, msg, now),
		})
		if err != nil {
			return fmt.Errorf("create alert actions: %w", err)
		}
		actions = len(created)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return actions, nil
}

func (d *Dispatcher) sentAction(studentID, notificationID uint, channel, recipient, msg string, now time.Time) *types.AlertAction {
	nid := notificationID
	r := recipient
	return &types.AlertAction{
		StudentID:      studentID,
		NotificationID: &nid,
		Channel:        channel,
		Recipient:      &r,
		Message:        msg,
		Status:         roster.ActionSent,
		SentAt:         &now,
	}
}
