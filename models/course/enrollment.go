package course

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment tracks a user's enrollment in a course
type Enrollment struct {
	gorm.Model
	UserID      uint       `json:"user_id" gorm:"index;not null"`
	CourseID    uint       `json:"course_id" gorm:"index;not null"`
	Status      string     `json:"status" gorm:"default:'ENROLLED'"` // ENROLLED, IN_PROGRESS, COMPLETED
	Type        string     `json:"type" gorm:"default:'FULL'"`       // FULL, PARTIAL
	AmountPaid  float64    `json:"amount_paid" gorm:"default:0"`
	CompletedAt *time.Time `json:"completed_at"`
	IsDeleted   bool       `gorm:"default:false"`

	Course Course `json:"course" gorm:"foreignKey:CourseID"`
}

// EnrollmentModule lists the modules covered by a PARTIAL enrollment. FULL
// enrollments cover every module and carry no rows here.
type EnrollmentModule struct {
	gorm.Model
	EnrollmentID uint `json:"enrollment_id" gorm:"index;not null"`
	ModuleID     uint `json:"module_id" gorm:"index;not null"`
	IsDeleted    bool `gorm:"default:false"`
}
