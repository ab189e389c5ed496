package evaluation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DocumentAnalysis is one analyze-document result kept for the evaluation history.
type DocumentAnalysis struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	FileName         string         `gorm:"column:file_name;size:255;not null" json:"fileName"`
	ProcessedRecords int            `gorm:"column:processed_records;not null;default:0" json:"processedRecords"`
	Alerts           datatypes.JSON `gorm:"column:alerts" json:"alerts"`
	Confidence       float64        `gorm:"column:confidence;not null" json:"confidence"`
	Model            string         `gorm:"column:model;size:120" json:"model"`
	Summary          string         `gorm:"column:summary;type:text" json:"summary"`
	TopFindings      datatypes.JSON `gorm:"column:top_findings" json:"topFindings"`
	UsedAI           bool           `gorm:"column:used_ai;not null;default:false" json:"usedAI"`
	SavedRecords     int            `gorm:"column:saved_records;not null;default:0" json:"savedRecords"`
	HighRiskActions  int            `gorm:"column:high_risk_actions;not null;default:0" json:"highRiskActions"`
	CreatedAt        time.Time      `gorm:"column:created_at;index" json:"createdAt"`
}

func (DocumentAnalysis) TableName() string { return "document_analyses" }
