package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/apns-backend/internal/data/repos"
	"github.com/yungbote/apns-backend/internal/platform/logger"
)

type Repos struct {
	User             repos.UserRepo
	Student          repos.StudentRepo
	Notification     repos.NotificationRepo
	AlertAction      repos.AlertActionRepo
	DocumentAnalysis repos.DocumentAnalysisRepo
}

// wireRepos tolerates a nil db; every repo call then fails as unavailable
// and the services fall back to memory.
func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:             repos.NewUserRepo(db, log),
		Student:          repos.NewStudentRepo(db, log),
		Notification:     repos.NewNotificationRepo(db, log),
		AlertAction:      repos.NewAlertActionRepo(db, log),
		DocumentAnalysis: repos.NewDocumentAnalysisRepo(db, log),
	}
}
