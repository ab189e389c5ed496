package analyses

import (
	"context"
	"errors"

	"github.com/google/uuid"
	types "github.com/yungbote/apns-backend/internal/domain"
	"github.com/yungbote/apns-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type DocumentAnalysisRepo interface {
	Create(ctx context.Context, tx *gorm.DB, analysis *types.DocumentAnalysis) error
	ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.DocumentAnalysis, error)
}

type documentAnalysisRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentAnalysisRepo(db *gorm.DB, baseLog *logger.Logger) DocumentAnalysisRepo {
	repoLog := baseLog.With("repo", "DocumentAnalysisRepo")
	return &documentAnalysisRepo{db: db, log: repoLog}
}

func (r *documentAnalysisRepo) Create(ctx context.Context, tx *gorm.DB, analysis *types.DocumentAnalysis) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if analysis == nil {
		return errors.New("nil analysis")
	}
	if analysis.ID == uuid.Nil {
		analysis.ID = uuid.New()
	}
	return transaction.WithContext(ctx).Create(analysis).Error
}

func (r *documentAnalysisRepo) ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.DocumentAnalysis, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 20
	}
	results := []*types.DocumentAnalysis{}
	if err := transaction.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
