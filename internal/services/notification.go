package services

import (
	"context"
	"time"

	"github.com/yungbote/apns-backend/internal/data/db"
	"github.com/yungbote/apns-backend/internal/data/memstore"
	"github.com/yungbote/apns-backend/internal/data/repos"
	types "github.com/yungbote/apns-backend/internal/domain"
	"github.com/yungbote/apns-backend/internal/domain/roster"
	"github.com/yungbote/apns-backend/internal/platform/apierr"
	"github.com/yungbote/apns-backend/internal/platform/logger"
)

type CreateNotificationInput struct {
	StudentID uint    `json:"student_id" validate:"required"`
	Message   string  `json:"message" validate:"required"`
	Status    *string `json:"status"`
}

type NotificationService interface {
	List(ctx context.Context) ([]types.NotificationView, error)
	Create(ctx context.Context, in CreateNotificationInput) (*types.Notification, error)
}

type notificationService struct {
	log           *logger.Logger
	status        *db.Status
	mem           *memstore.Store
	notifications repos.NotificationRepo
	queryTimeout  time.Duration
	now           func() time.Time
}

func NewNotificationService(
	log *logger.Logger,
	status *db.Status,
	mem *memstore.Store,
	notifications repos.NotificationRepo,
	queryTimeout time.Duration,
) NotificationService {
	if queryTimeout <= 0 {
		queryTimeout = defaultQueryTimeout
	}
	return &notificationService{
		log:           log.With("service", "NotificationService"),
		status:        status,
		mem:           mem,
		notifications: notifications,
		queryTimeout:  queryTimeout,
		now:           time.Now,
	}
}

func (ns *notificationService) degraded(err error, op string) bool {
	if !ns.status.Observe(err) {
		return false
	}
	ns.log.Warn("store unavailable, serving from memory", "op", op, "error", err)
	return ns.mem != nil
}

func (ns *notificationService) List(ctx context.Context) ([]types.NotificationView, error) {
	if !ns.status.Connected() {
		if ns.mem == nil {
			return nil, storeUnavailable()
		}
		return ns.mem.ListNotifications(), nil
	}
	ctx, cancel := context.WithTimeout(ctx, ns.queryTimeout)
	defer cancel()
	rows, err := ns.notifications.ListWithStudents(ctx, nil)
	if err != nil {
		if ns.degraded(err, "list_notifications") {
			return ns.mem.ListNotifications(), nil
		}
		return nil, internalError(ns.log, ns.status, err, "list_notifications_failed", "Unable to fetch notifications")
	}
	return rows, nil
}

func (ns *notificationService) Create(ctx context.Context, in CreateNotificationInput) (*types.Notification, error) {
	if err := validate.Struct(in); err != nil {
		return nil, apierr.BadRequest("invalid_request", "student_id and message are required")
	}
	status := roster.NotificationPending
	if in.Status != nil && *in.Status != "" {
		status = *in.Status
	}
	if !roster.ValidNotificationStatus(status) {
		return nil, apierr.BadRequest("invalid_status", "status must be one of: pending, sent, failed, delivered")
	}

	notification := types.Notification{
		StudentID:        in.StudentID,
		Message:          in.Message,
		Status:           status,
		NotificationType: roster.NotificationTypeArrear,
		Priority:         roster.PriorityMedium,
	}
	if !ns.status.Connected() {
		return ns.createInMemory(notification)
	}

	if status == roster.NotificationSent {
		now := ns.now().UTC()
		notification.SentAt = &now
	}
	ctx, cancel := context.WithTimeout(ctx, ns.queryTimeout)
	defer cancel()
	if err := ns.notifications.Create(ctx, nil, &notification); err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, studentNotFound()
		}
		if ns.degraded(err, "create_notification") {
			notification.SentAt = nil
			return ns.createInMemory(notification)
		}
		return nil, internalError(ns.log, ns.status, err, "create_notification_failed", "Unable to create notification")
	}
	return &notification, nil
}

func (ns *notificationService) createInMemory(notification types.Notification) (*types.Notification, error) {
	if ns.mem == nil {
		return nil, storeUnavailable()
	}
	notification.ID = 0
	return ns.mem.CreateNotification(notification), nil
}
