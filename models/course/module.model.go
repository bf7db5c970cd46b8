package course

import "gorm.io/gorm"

// Module represents a section/module within a course
type Module struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"index;not null"`
	Title       string `json:"title"`
	Description string `json:"description"`
	OrderIndex  int    `json:"order_index" gorm:"default:0"` // Module order in course
	IsDeleted   bool   `gorm:"default:false"`
}

// ModulePrerequisite declares that a module requires another module to be
// completed (up to RequiredCompletion percent) before it can be accessed.
// Only direct prerequisites are evaluated; cycles are rejected at authoring time.
type ModulePrerequisite struct {
	gorm.Model
	ModuleID           uint    `json:"module_id" gorm:"index;not null;uniqueIndex:idx_module_prereq"`
	PrerequisiteID     uint    `json:"prerequisite_id" gorm:"not null;uniqueIndex:idx_module_prereq"`
	// No gorm default here: with one, a zero value would be dropped on insert
	// and an always-passing 0% prerequisite would come back as 100. The
	// controller fills in 100 when the request omits the field.
	RequiredCompletion float64 `json:"required_completion"` // percent 0-100
	IsDeleted          bool    `gorm:"default:false"`
}
