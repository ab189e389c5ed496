package roster

import "time"

type Student struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	RollNo       string    `gorm:"column:roll_no;size:30;uniqueIndex;not null" json:"roll_no"`
	Name         string    `gorm:"column:name;size:120;not null" json:"name"`
	Department   *string   `gorm:"column:department;size:120;index" json:"department"`
	Semester     *int      `gorm:"column:semester;index;check:chk_students_semester,semester >= 1 AND semester <= 12" json:"semester"`
	Email        *string   `gorm:"column:email;size:255" json:"email"`
	Phone        *string   `gorm:"column:phone;size:20" json:"phone"`
	ParentEmail  *string   `gorm:"column:parent_email;size:255" json:"parent_email"`
	ParentPhone  *string   `gorm:"column:parent_phone;size:20" json:"parent_phone"`
	PhotoURL     *string   `gorm:"column:photo_url;type:text" json:"photo_url"`
	ArrearsCount int       `gorm:"column:arrears_count;not null;default:0" json:"arrears_count"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true;index" json:"is_active"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Student) TableName() string { return "students" }

// HighRisk reports whether the arrear count crosses the parent-outreach threshold.
func (s *Student) HighRisk() bool { return s != nil && s.ArrearsCount > HighRiskArrears }

// HighRiskArrears is the arrear count above which parents are contacted.
const HighRiskArrears = 3
