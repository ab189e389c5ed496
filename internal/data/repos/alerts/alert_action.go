package alerts

import (
	"context"

	types "github.com/yungbote/apns-backend/internal/domain"
	"github.com/yungbote/apns-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type AlertActionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, actions []*types.AlertAction) ([]*types.AlertAction, error)
	ListForStudent(ctx context.Context, tx *gorm.DB, studentID uint, limit int) ([]*types.AlertAction, error)
	ListForNotification(ctx context.Context, tx *gorm.DB, notificationID uint) ([]*types.AlertAction, error)
}

type alertActionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAlertActionRepo(db *gorm.DB, baseLog *logger.Logger) AlertActionRepo {
	repoLog := baseLog.With("repo", "AlertActionRepo")
	return &alertActionRepo{db: db, log: repoLog}
}

func (ar *alertActionRepo) Create(ctx context.Context, tx *gorm.DB, actions []*types.AlertAction) ([]*types.AlertAction, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	if len(actions) == 0 {
		return []*types.AlertAction{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&actions).Error; err != nil {
		return nil, err
	}
	return actions, nil
}

func (ar *alertActionRepo) ListForStudent(ctx context.Context, tx *gorm.DB, studentID uint, limit int) ([]*types.AlertAction, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	results := []*types.AlertAction{}
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

func (ar *alertActionRepo) ListForNotification(ctx context.Context, tx *gorm.DB, notificationID uint) ([]*types.AlertAction, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	results := []*types.AlertAction{}
	if err := transaction.WithContext(ctx).
		Where("notification_id = ?", notificationID).
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
