package domain

import (
	"github.com/yungbote/apns-backend/internal/domain/account"
	"github.com/yungbote/apns-backend/internal/domain/evaluation"
	"github.com/yungbote/apns-backend/internal/domain/roster"
)

type Student = roster.Student
type Notification = roster.Notification
type NotificationView = roster.NotificationView
type AlertAction = roster.AlertAction

type User = account.User

type DocumentAnalysis = evaluation.DocumentAnalysis

const (
	HighRiskArrears      = roster.HighRiskArrears
	PlaceholderRecipient = roster.PlaceholderRecipient
)
