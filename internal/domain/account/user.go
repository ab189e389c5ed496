package account

import "time"

const (
	RoleAdmin   = "admin"
	RoleHR      = "hr"
	RoleFaculty = "faculty"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FullName     string    `gorm:"column:full_name;size:120;not null" json:"fullName"`
	Email        string    `gorm:"column:email;size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;type:text;not null" json:"-"`
	Role         string    `gorm:"column:role;size:30;not null;default:admin;index" json:"role"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"-"`
}

func (User) TableName() string { return "users" }

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleHR, RoleFaculty:
		return true
	}
	return false
}
