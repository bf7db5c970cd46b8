package progress

import (
	"errors"
	"time"

	courseModels "lms/models/course"
	progressModels "lms/models/progress"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompletionResult is what a mark-complete call reports back to the API layer.
// When Completed is false, UnmetRequirements names the clause that failed and
// nothing was written.
type CompletionResult struct {
	Completed         bool     `json:"completed"`
	Progress          float64  `json:"progress"`
	CompletedLessons  []uint   `json:"completed_lessons"`
	CompletedQuizzes  []uint   `json:"completed_quizzes"`
	UnmetRequirements []string `json:"unmet_requirements,omitempty"`
}

// errUnsatisfied aborts the ledger transaction when the in-transaction
// re-evaluation fails. It never escapes UpdateOnCompletion.
var errUnsatisfied = errors.New("completion requirements unmet")

// UpdateOnCompletion is the only write path for the per-(user, module) ledger.
// The requirement re-check and the ledger write run in one transaction with the
// entry row locked, so two completion calls racing for the same learner and
// module serialize and the recorded progress is never computed from a torn
// completed-lesson set. Pre-transaction requirement checks by callers are
// advisory only.
//
// Marking an already-completed lesson again is a no-op, not an error. The
// operation makes exactly one transactional attempt; on ConcurrencyError the
// caller decides whether to retry (safe, because the write is idempotent).
func UpdateOnCompletion(db *gorm.DB, userID, courseID, moduleID, lessonID uint, quizID *uint) (*CompletionResult, error) {
	lesson, err := lessonByID(db, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson.ModuleID != moduleID || lesson.CourseID != courseID {
		return nil, &NotFoundError{Resource: "lesson", ID: lessonID}
	}

	result := &CompletionResult{}

	err = db.Transaction(func(tx *gorm.DB) error {
		// Never trust a check made outside the transaction; activity rows may
		// have changed since.
		ok, unmet, err := IsSatisfied(tx, userID, lesson)
		if err != nil {
			return err
		}
		if !ok {
			result.UnmetRequirements = unmet
			return errUnsatisfied
		}

		var entry progressModels.ModuleProgress
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND module_id = ?", userID, moduleID).
			First(&entry).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return storeErr("load ledger entry", err)
			}
			// First qualifying completion creates the entry lazily.
			entry = progressModels.ModuleProgress{
				UserID:   userID,
				CourseID: courseID,
				ModuleID: moduleID,
			}
		}

		lessons := entry.LessonIDs()
		if !progressModels.ContainsID(lessons, lessonID) {
			lessons = append(lessons, lessonID)
		}
		if err := entry.SetLessonIDs(lessons); err != nil {
			return storeErr("encode completed lessons", err)
		}

		quizzes := entry.QuizIDs()
		if quizID != nil {
			passed, err := HasPassedQuiz(tx, userID, lesson)
			if err != nil {
				return err
			}
			if passed && !progressModels.ContainsID(quizzes, *quizID) {
				quizzes = append(quizzes, *quizID)
			}
		}
		if err := entry.SetQuizIDs(quizzes); err != nil {
			return storeErr("encode completed quizzes", err)
		}

		total, err := moduleLessonCount(tx, moduleID)
		if err != nil {
			return err
		}
		if total > 0 {
			entry.Progress = float64(len(lessons)) / float64(total) * 100
		}
		entry.LastAccessed = time.Now()

		if err := tx.Save(&entry).Error; err != nil {
			return storeErr("save ledger entry", err)
		}

		result.Completed = true
		result.Progress = entry.Progress
		result.CompletedLessons = lessons
		result.CompletedQuizzes = quizzes
		return nil
	})
	if err != nil {
		if errors.Is(err, errUnsatisfied) {
			return result, nil
		}
		return nil, txErr(err)
	}
	return result, nil
}

// LedgerEntry fetches the learner's ledger entry for a module. Absence is
// reported as (nil, nil): a learner who never completed anything has 0%.
// The percentage is re-derived from the live lesson count on every read, so
// lessons added or removed since the last completion show up immediately
// rather than after the nightly refresh.
func LedgerEntry(db *gorm.DB, userID, moduleID uint) (*progressModels.ModuleProgress, error) {
	var entry progressModels.ModuleProgress
	err := db.Where("user_id = ? AND module_id = ?", userID, moduleID).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeErr("load ledger entry", err)
	}
	if _, err := RecomputeProgress(db, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// RecomputeProgress re-derives an entry's percentage from the live non-deleted
// lesson count and saves it when it drifted. Lessons added to or removed from
// a module change the denominator without any learner activity; every ledger
// read and the nightly refresh job walk entries through here. A module with no
// live lessons keeps its recorded figure, same as the completion write path.
func RecomputeProgress(db *gorm.DB, entry *progressModels.ModuleProgress) (bool, error) {
	total, err := moduleLessonCount(db, entry.ModuleID)
	if err != nil {
		return false, err
	}
	if total == 0 {
		return false, nil
	}
	fresh := float64(len(entry.LessonIDs())) / float64(total) * 100
	if fresh == entry.Progress {
		return false, nil
	}
	if err := db.Model(entry).UpdateColumn("progress", fresh).Error; err != nil {
		return false, storeErr("save recomputed progress", err)
	}
	entry.Progress = fresh
	return true, nil
}

func moduleLessonCount(db *gorm.DB, moduleID uint) (int64, error) {
	var total int64
	err := db.Model(&courseModels.Lesson{}).
		Where("module_id = ? AND is_deleted = ?", moduleID, false).
		Count(&total).Error
	if err != nil {
		return 0, storeErr("count module lessons", err)
	}
	return total, nil
}
