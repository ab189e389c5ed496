package repos

import (
	"github.com/yungbote/apns-backend/internal/data/repos/alerts"
	"github.com/yungbote/apns-backend/internal/data/repos/analyses"
	"github.com/yungbote/apns-backend/internal/data/repos/notifications"
	"github.com/yungbote/apns-backend/internal/data/repos/students"
	"github.com/yungbote/apns-backend/internal/data/repos/user"
	"github.com/yungbote/apns-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type UserRepo = user.UserRepo

type StudentRepo = students.StudentRepo
type NotificationRepo = notifications.NotificationRepo
type AlertActionRepo = alerts.AlertActionRepo

type DocumentAnalysisRepo = analyses.DocumentAnalysisRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewStudentRepo(db *gorm.DB, baseLog *logger.Logger) StudentRepo {
	return students.NewStudentRepo(db, baseLog)
}
func NewNotificationRepo(db *gorm.DB, baseLog *logger.Logger) NotificationRepo {
	return notifications.NewNotificationRepo(db, baseLog)
}
func NewAlertActionRepo(db *gorm.DB, baseLog *logger.Logger) AlertActionRepo {
	return alerts.NewAlertActionRepo(db, baseLog)
}

func NewDocumentAnalysisRepo(db *gorm.DB, baseLog *logger.Logger) DocumentAnalysisRepo {
	return analyses.NewDocumentAnalysisRepo(db, baseLog)
}
