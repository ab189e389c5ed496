package students

import (
	"context"
	"errors"

	types "github.com/yungbote/apns-backend/internal/domain"
	"github.com/yungbote/apns-backend/internal/platform/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// upsertColumns are replaced wholesale when a roll number is ingested again.
var upsertColumns = []string{
	"name",
	"department",
	"semester",
	"email",
	"phone",
	"parent_email",
	"parent_phone",
	"arrears_count",
	"photo_url",
	"updated_at",
}

type StudentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, student *types.Student) error
	List(ctx context.Context, tx *gorm.DB) ([]*types.Student, error)
	GetByRollNo(ctx context.Context, tx *gorm.DB, rollNo string) (*types.Student, error)
	Upsert(ctx context.Context, tx *gorm.DB, student *types.Student) (*types.Student, error)
}

type studentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudentRepo(db *gorm.DB, baseLog *logger.Logger) StudentRepo {
	repoLog := baseLog.With("repo", "StudentRepo")
	return &studentRepo{db: db, log: repoLog}
}

func (sr *studentRepo) Create(ctx context.Context, tx *gorm.DB, student *types.Student) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if student == nil {
		return errors.New("nil student")
	}
	student.IsActive = true
	return transaction.WithContext(ctx).Create(student).Error
}

func (sr *studentRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Student, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var results []*types.Student
	if err := transaction.WithContext(ctx).
		Order("id DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetByRollNo returns nil without error when no student has rollNo.
func (sr *studentRepo) GetByRollNo(ctx context.Context, tx *gorm.DB, rollNo string) (*types.Student, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var results []*types.Student
	if err := transaction.WithContext(ctx).
		Where("roll_no = ?", rollNo).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

// Upsert inserts student or, when the roll number exists, overwrites every
// ingested field and refreshes updated_at. The stored row is returned.
func (sr *studentRepo) Upsert(ctx context.Context, tx *gorm.DB, student *types.Student) (*types.Student, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if student == nil {
		return nil, errors.New("nil student")
	}
	student.IsActive = true
	row := *student
	row.ID = 0
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "roll_no"}},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		}).
		Create(&row).Error; err != nil {
		return nil, err
	}
	stored, err := sr.GetByRollNo(ctx, transaction, student.RollNo)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return stored, nil
}
