package course

import "gorm.io/gorm"

// Lesson represents a content unit within a module. OrderIndex is unique among
// non-deleted lessons of a module; holes left by soft deletes are closed by the
// reindex pass in the admin controller.
type Lesson struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"index;not null"`
	ModuleID    uint   `json:"module_id" gorm:"index;not null"`
	Title       string `json:"title"`
	Description string `json:"description" gorm:"type:text"`
	OrderIndex  int    `json:"order_index" gorm:"default:0"` // Order within module

	// Video attached to the lesson (Cloudflare Stream)
	VideoStreamUID string `json:"video_stream_uid"`
	VideoURL       string `json:"video_url"`
	VideoDuration  int    `json:"video_duration" gorm:"default:0"` // seconds

	// Completion requirements
	RequireVideoWatch       bool `json:"require_video_watch" gorm:"default:false"`
	MinimumTimeSpentSeconds int  `json:"minimum_time_spent_seconds" gorm:"default:0"`

	// Quiz settings
	QuizRequired               bool   `json:"quiz_required" gorm:"default:false"`
	MinimumPassingScore        *int   `json:"minimum_passing_score"`              // overrides quiz default when set
	QuizBlocksProgress         bool   `json:"quiz_blocks_progress" gorm:"default:false"`
	ShowQuizAt                 string `json:"show_quiz_at" gorm:"default:'ANY'"` // BEFORE, AFTER, ANY
	MinimumTimeRequiredSeconds int    `json:"minimum_time_required_seconds" gorm:"default:0"`

	IsPublished bool `json:"is_published" gorm:"default:false"`
	IsDeleted   bool `gorm:"default:false"`
}

// LessonAsset is a downloadable file attached to a lesson. Required assets must
// be downloaded at least once before the lesson can be completed. Downloads is
// a denormalized counter updated best-effort on download.
type LessonAsset struct {
	gorm.Model
	LessonID  uint   `json:"lesson_id" gorm:"index;not null"`
	Title     string `json:"title"`
	FileURL   string `json:"file_url"`
	FileSize  int64  `json:"file_size" gorm:"default:0"` // bytes
	Required  bool   `json:"required" gorm:"default:false"`
	Downloads int64  `json:"downloads" gorm:"default:0"`
	IsDeleted bool   `gorm:"default:false"`
}
