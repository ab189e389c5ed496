package notifications

import (
	"context"
	"errors"

	types "github.com/yungbote/apns-backend/internal/domain"
	"github.com/yungbote/apns-backend/internal/domain/roster"
	"github.com/yungbote/apns-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type NotificationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, notification *types.Notification) error
	ListForStudent(ctx context.Context, tx *gorm.DB, studentID uint, limit int) ([]*types.Notification, error)
	ListWithStudents(ctx context.Context, tx *gorm.DB) ([]types.NotificationView, error)
	CountForStudent(ctx context.Context, tx *gorm.DB, studentID uint) (int64, error)
}

type notificationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNotificationRepo(db *gorm.DB, baseLog *logger.Logger) NotificationRepo {
	repoLog := baseLog.With("repo", "NotificationRepo")
	return &notificationRepo{db: db, log: repoLog}
}

func (nr *notificationRepo) Create(ctx context.Context, tx *gorm.DB, notification *types.Notification) error {
	transaction := tx
	if transaction == nil {
		transaction = nr.db
	}
	if notification == nil {
		return errors.New("nil notification")
	}
	return transaction.WithContext(ctx).Create(notification).Error
}

func (nr *notificationRepo) ListForStudent(ctx context.Context, tx *gorm.DB, studentID uint, limit int) ([]*types.Notification, error) {
	transaction := tx
	if transaction == nil {
		transaction = nr.db
	}
	results := []*types.Notification{}
	q := transaction.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListWithStudents joins every notification with its student, newest id first,
// and derives a severity from the student's semester.
func (nr *notificationRepo) ListWithStudents(ctx context.Context, tx *gorm.DB) ([]types.NotificationView, error) {
	transaction := tx
	if transaction == nil {
		transaction = nr.db
	}
	results := []types.NotificationView{}
	if err := transaction.WithContext(ctx).
		Table("notifications AS n").
		Select("n.id, n.student_id, s.name AS student_name, s.semester, n.message, n.status, n.sent_at, n.created_at").
		Joins("INNER JOIN students s ON s.id = n.student_id").
		Order("n.id DESC").
		Scan(&results).Error; err != nil {
		return nil, err
	}
	for i := range results {
		results[i].Severity = roster.SeverityFromSemester(results[i].Semester)
	}
	return results, nil
}

func (nr *notificationRepo) CountForStudent(ctx context.Context, tx *gorm.DB, studentID uint) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = nr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Notification{}).
		Where("student_id = ?", studentID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
