package testutil

import (
	"context"
	"testing"

	types "github.com/yungbote/apns-backend/internal/domain"
	"github.com/yungbote/apns-backend/internal/domain/roster"
	"gorm.io/gorm"
)

func SeedStudent(tb testing.TB, ctx context.Context, tx *gorm.DB, rollNo string, arrears int) *types.Student {
	tb.Helper()
	sem := 5
	s := &types.Student{
		RollNo:       rollNo,
		Name:         "Student " + rollNo,
		Semester:     &sem,
		ArrearsCount: arrears,
		IsActive:     true,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed student: %v", err)
	}
	return s
}

func SeedNotification(tb testing.TB, ctx context.Context, tx *gorm.DB, studentID uint, message string) *types.Notification {
	tb.Helper()
	n := &types.Notification{
		StudentID:        studentID,
		Message:          message,
		Status:           roster.NotificationPending,
		NotificationType: roster.NotificationTypeArrear,
		Priority:         roster.PriorityMedium,
	}
	if err := tx.WithContext(ctx).Create(n).Error; err != nil {
		tb.Fatalf("seed notification: %v", err)
	}
	return n
}
