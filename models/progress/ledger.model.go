package progress

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ModuleProgress is the authoritative per-(user, module) completion record.
// CompletedLessons and CompletedQuizzes hold JSON arrays of ids and never
// shrink once an id is added. Progress is recomputed from the live non-deleted
// lesson count on every update, so it can drift when lessons are added or
// removed from the module without new learner activity.
//
// Rows are created lazily on first qualifying completion and are only written
// through the ledger update protocol in the progress package.
type ModuleProgress struct {
	gorm.Model
	UserID           uint           `json:"user_id" gorm:"not null;uniqueIndex:idx_ledger_user_module"`
	CourseID         uint           `json:"course_id" gorm:"index;not null"`
	ModuleID         uint           `json:"module_id" gorm:"not null;uniqueIndex:idx_ledger_user_module"`
	CompletedLessons datatypes.JSON `json:"completed_lessons"`
	CompletedQuizzes datatypes.JSON `json:"completed_quizzes"`
	Progress         float64        `json:"progress" gorm:"default:0"` // percent 0-100
	LastAccessed     time.Time      `json:"last_accessed"`
}

// LessonIDs decodes the completed-lesson set. A nil or empty column decodes to
// an empty slice.
func (mp *ModuleProgress) LessonIDs() []uint {
	return decodeIDSet(mp.CompletedLessons)
}

// QuizIDs decodes the completed-quiz set.
func (mp *ModuleProgress) QuizIDs() []uint {
	return decodeIDSet(mp.CompletedQuizzes)
}

// SetLessonIDs replaces the completed-lesson set.
func (mp *ModuleProgress) SetLessonIDs(ids []uint) error {
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	mp.CompletedLessons = datatypes.JSON(raw)
	return nil
}

// SetQuizIDs replaces the completed-quiz set.
func (mp *ModuleProgress) SetQuizIDs(ids []uint) error {
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	mp.CompletedQuizzes = datatypes.JSON(raw)
	return nil
}

func decodeIDSet(col datatypes.JSON) []uint {
	if len(col) == 0 {
		return []uint{}
	}
	var ids []uint
	if err := json.Unmarshal(col, &ids); err != nil {
		return []uint{}
	}
	return ids
}

// ContainsID reports whether id is already present in a decoded set.
func ContainsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
