package db

import (
	types "github.com/yungbote/apns-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.User{},

		&types.Student{},
		&types.Notification{},
		&types.AlertAction{},

		&types.DocumentAnalysis{},
	)
}
