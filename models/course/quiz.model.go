package course

import (
	"time"

	"gorm.io/gorm"
)

// Quiz attempt statuses. Only COMPLETED and GRADED attempts count toward
// pass/fail gating; IN_PROGRESS and GRADING never satisfy a gate.
const (
	AttemptInProgress = "IN_PROGRESS"
	AttemptCompleted  = "COMPLETED"
	AttemptGrading    = "GRADING"
	AttemptGraded     = "GRADED"
)

// Quiz is attached to a lesson. PassingScore is the default pass threshold,
// overridden per lesson by Lesson.MinimumPassingScore when set.
type Quiz struct {
	gorm.Model
	LessonID     uint   `json:"lesson_id" gorm:"index;not null"`
	Title        string `json:"title"`
	PassingScore int    `json:"passing_score" gorm:"default:60"` // percent 0-100
	MaxAttempts  int    `json:"max_attempts" gorm:"default:0"`   // 0 = unlimited
	IsDeleted    bool   `gorm:"default:false"`
}

// QuizQuestion represents a question within a quiz
type QuizQuestion struct {
	gorm.Model
	QuizID       uint   `json:"quiz_id" gorm:"index;not null"`
	QuestionText string `json:"question_text" gorm:"type:text"`
	QuestionType string `json:"question_type" gorm:"default:'MCQ'"` // MCQ, ESSAY
	Points       int    `json:"points" gorm:"default:1"`
	OrderIndex   int    `json:"order_index" gorm:"default:0"`
	IsDeleted    bool   `gorm:"default:false"`
}

// QuizOption represents an option for an MCQ question
type QuizOption struct {
	gorm.Model
	QuestionID uint   `json:"question_id" gorm:"index;not null"`
	OptionText string `json:"option_text"`
	IsCorrect  bool   `json:"is_correct" gorm:"default:false"`
	OrderIndex int    `json:"order_index" gorm:"default:0"`
	IsDeleted  bool   `gorm:"default:false"`
}

// QuizAttempt represents a student's attempt at a quiz
type QuizAttempt struct {
	gorm.Model
	UserID        uint       `json:"user_id" gorm:"index;not null"`
	QuizID        uint       `json:"quiz_id" gorm:"index;not null"`
	Status        string     `json:"status" gorm:"default:'IN_PROGRESS'"`
	Score         int        `json:"score" gorm:"default:0"`
	MaxScore      int        `json:"max_score" gorm:"default:0"`
	Percentage    float64    `json:"percentage" gorm:"default:0"`
	Passed        bool       `json:"passed" gorm:"default:false"`
	AttemptNumber int        `json:"attempt_number" gorm:"default:1"`
	SubmittedAt   *time.Time `json:"submitted_at"`
	IsDeleted     bool       `gorm:"default:false"`
}
