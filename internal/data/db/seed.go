package db

import (
	"context"
	"fmt"

	types "github.com/yungbote/apns-backend/internal/domain"
	"github.com/yungbote/apns-backend/internal/domain/roster"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type seedStudent struct {
	RollNo     string
	Name       string
	Department string
	Semester   int
}

var sampleStudents = []seedStudent{
	{"SIST2023001", "Arjun Kumar", "CSE", 6},
	{"SIST2023002", "Priya Singh", "ECE", 4},
	{"SIST2023003", "Rahul Verma", "MECH", 2},
	{"SIST2023004", "Neha Gupta", "IT", 8},
	{"SIST2023005", "Aditya Patel", "CSE", 5},
	{"SIST2023006", "Divya Sharma", "ECE", 3},
}

type seedNotification struct {
	RollNo   string
	Message  string
	Status   string
	Type     string
	Priority string
}

var sampleNotifications = []seedNotification{
	{"SIST2023001", "You have pending arrears", roster.NotificationPending, "arrear", roster.PriorityCritical},
	{"SIST2023002", "Notification for semester review", roster.NotificationSent, "review", roster.PriorityMedium},
	{"SIST2023004", "Deadline approaching for assignments", roster.NotificationPending, "reminder", roster.PriorityHigh},
}

// SeedSampleData inserts the demo roster. Existing students are left alone
// and a sample notification is only added to a student that has none.
func SeedSampleData(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, s := range sampleStudents {
			dept := s.Department
			sem := s.Semester
			row := types.Student{RollNo: s.RollNo, Name: s.Name, Department: &dept, Semester: &sem, IsActive: true}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "roll_no"}},
				DoNothing: true,
			}).Create(&row).Error; err != nil {
				return fmt.Errorf("seed student %s: %w", s.RollNo, err)
			}
		}
		for _, n := range sampleNotifications {
			var student types.Student
			if err := tx.Where("roll_no = ?", n.RollNo).Limit(1).Find(&student).Error; err != nil {
				return fmt.Errorf("seed lookup %s: %w", n.RollNo, err)
			}
			if student.ID == 0 {
				continue
			}
			var count int64
			if err := tx.Model(&types.Notification{}).Where("student_id = ?", student.ID).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			row := types.Notification{
				StudentID:        student.ID,
				Message:          n.Message,
				Status:           n.Status,
				NotificationType: n.Type,
				Priority:         n.Priority,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("seed notification %s: %w", n.RollNo, err)
			}
		}
		return nil
	})
}
