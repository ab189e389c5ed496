package roster

import "time"

const (
	NotificationPending   = "pending"
	NotificationSent      = "sent"
	NotificationFailed    = "failed"
	NotificationDelivered = "delivered"
)

const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

const NotificationTypeArrear = "arrear"

type Notification struct {
	ID               uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID        uint       `gorm:"column:student_id;not null;index" json:"student_id"`
	Student          *Student   `gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Message          string     `gorm:"column:message;type:text;not null" json:"message"`
	Status           string     `gorm:"column:status;size:20;not null;default:pending;index;check:chk_notifications_status,status IN ('pending','sent','failed','delivered')" json:"status"`
	NotificationType string     `gorm:"column:notification_type;size:50;default:arrear" json:"notification_type"`
	Priority         string     `gorm:"column:priority;size:20;default:medium;check:chk_notifications_priority,priority IN ('low','medium','high','critical')" json:"priority"`
	SentAt           *time.Time `gorm:"column:sent_at" json:"sent_at"`
	DeliveredAt      *time.Time `gorm:"column:delivered_at" json:"delivered_at"`
	CreatedAt        time.Time  `gorm:"column:created_at;index" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (Notification) TableName() string { return "notifications" }

// ValidNotificationStatus reports whether s is an accepted notification status.
func ValidNotificationStatus(s string) bool {
	switch s {
	case NotificationPending, NotificationSent, NotificationFailed, NotificationDelivered:
		return true
	}
	return false
}

// SeverityFromSemester buckets a notification by the student's semester.
func SeverityFromSemester(semester *int) string {
	switch {
	case semester == nil:
		return "Low"
	case *semester >= 6:
		return "Critical"
	case *semester >= 4:
		return "Medium"
	default:
		return "Low"
	}
}

// NotificationView is a notification joined with its student.
type NotificationView struct {
	ID          uint       `json:"id"`
	StudentID   uint       `json:"student_id"`
	StudentName string     `json:"student_name"`
	Semester    *int       `json:"semester"`
	Message     string     `json:"message"`
	Status      string     `json:"status"`
	SentAt      *time.Time `json:"sent_at"`
	CreatedAt   time.Time  `json:"created_at"`
	Severity    string     `json:"severity"`
}
