package roster

import "time"

const (
	ChannelSMS   = "sms"
	ChannelCall  = "call"
	ChannelEmail = "email"
)

const (
	ActionQueued = "queued"
	ActionSent   = "sent"
	ActionFailed = "failed"
)

// PlaceholderRecipient is recorded when a student has no parent phone on file.
const PlaceholderRecipient = "parent-contact"

type AlertAction struct {
	ID             uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID      uint          `gorm:"column:student_id;not null;index" json:"student_id"`
	Student        *Student      `gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	NotificationID *uint         `gorm:"column:notification_id;index" json:"notification_id"`
	Notification   *Notification `gorm:"foreignKey:NotificationID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	Channel        string        `gorm:"column:channel;size:20;not null;index;check:chk_alert_actions_channel,channel IN ('sms','call','email')" json:"channel"`
	Recipient      *string       `gorm:"column:recipient;size:255" json:"recipient"`
	Message        string        `gorm:"column:message;type:text;not null" json:"message"`
	Status         string        `gorm:"column:status;size:20;not null;default:queued;index;check:chk_alert_actions_status,status IN ('queued','sent','failed')" json:"status"`
	SentAt         *time.Time    `gorm:"column:sent_at" json:"sent_at"`
	CreatedAt      time.Time     `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"column:updated_at" json:"updated_at"`
}

func (AlertAction) TableName() string { return "alert_actions" }

// NormalizeChannel lower-cases a manual contact channel and maps the "mail"
// alias to email. ok is false for anything outside call/mail/email/sms.
func NormalizeChannel(raw string) (channel string, ok bool) {
	switch raw {
	case "call", "sms", "email":
		return raw, true
	case "mail":
		return ChannelEmail, true
	}
	return "", false
}
