package progress

import (
	"errors"

	courseModels "lms/models/course"

	"gorm.io/gorm"
)

// CanAccessModule checks the learner against every direct prerequisite of the
// module. A missing ledger entry counts as 0% complete, so it only passes a
// prerequisite whose required completion is 0. Modules without prerequisites
// are always accessible; enrollment is checked elsewhere. Only depth-1
// prerequisites are evaluated — cycles are kept out at authoring time.
func CanAccessModule(db *gorm.DB, userID, moduleID uint) (bool, error) {
	var module courseModels.Module
	err := db.Where("id = ? AND is_deleted = ?", moduleID, false).First(&module).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, &NotFoundError{Resource: "module", ID: moduleID}
		}
		return false, storeErr("load module", err)
	}

	var prereqs []courseModels.ModulePrerequisite
	err = db.Where("module_id = ? AND is_deleted = ?", moduleID, false).Find(&prereqs).Error
	if err != nil {
		return false, storeErr("load module prerequisites", err)
	}

	for _, prereq := range prereqs {
		entry, err := LedgerEntry(db, userID, prereq.PrerequisiteID)
		if err != nil {
			return false, err
		}
		completion := float64(0)
		if entry != nil {
			completion = entry.Progress
		}
		if completion < prereq.RequiredCompletion {
			return false, nil
		}
	}
	return true, nil
}

// CanAccessLesson applies sequential gating: when the immediately preceding
// lesson (by order within the module) carries a required, progress-blocking
// quiz, its gated content stays locked until that quiz is passed. The first
// lesson of a module is always reachable at lesson granularity.
func CanAccessLesson(db *gorm.DB, userID uint, lesson *courseModels.Lesson) (bool, error) {
	var prev courseModels.Lesson
	err := db.Where("module_id = ? AND is_deleted = ? AND order_index < ?",
		lesson.ModuleID, false, lesson.OrderIndex).
		Order("order_index desc").First(&prev).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return true, nil
		}
		return false, storeErr("load preceding lesson", err)
	}

	if !prev.QuizRequired || !prev.QuizBlocksProgress {
		return true, nil
	}
	return HasPassedQuiz(db, userID, &prev)
}
