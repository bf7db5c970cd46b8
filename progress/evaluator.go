package progress

import (
	"errors"

	courseModels "lms/models/course"
	progressModels "lms/models/progress"

	"gorm.io/gorm"
)

// IsSatisfied decides whether the learner currently meets every completion
// requirement of the lesson. It reads activity, download and quiz state but
// writes nothing, so it can run inside the ledger transaction.
//
// Clauses are AND-combined and evaluated in a fixed order, stopping at the
// first unmet one; the returned slice names the failed clause so the API layer
// can build an actionable message. A lesson with no requirements and no
// required quiz is trivially satisfied.
func IsSatisfied(db *gorm.DB, userID uint, lesson *courseModels.Lesson) (bool, []string, error) {
	ok, err := videoClauseMet(db, userID, lesson)
	if err != nil {
		return false, nil, err
	}
	if !ok {
		return false, []string{ClauseVideo}, nil
	}

	ok, err = assetsClauseMet(db, userID, lesson)
	if err != nil {
		return false, nil, err
	}
	if !ok {
		return false, []string{ClauseAssets}, nil
	}

	if lesson.MinimumTimeSpentSeconds > 0 {
		spent, err := timeSpent(db, userID, lesson.ID)
		if err != nil {
			return false, nil, err
		}
		if spent < int64(lesson.MinimumTimeSpentSeconds) {
			return false, []string{ClauseTime}, nil
		}
	}

	if lesson.QuizRequired {
		quiz, err := quizForLesson(db, lesson.ID)
		if err != nil {
			return false, nil, err
		}
		// A required-quiz flag without an attached quiz gates nothing.
		if quiz != nil {
			passed, err := HasPassedQuiz(db, userID, lesson)
			if err != nil {
				return false, nil, err
			}
			if !passed {
				return false, []string{ClauseQuiz}, nil
			}
		}
	}

	return true, nil, nil
}

// videoClauseMet checks the watch-video requirement. A lesson that requires
// watching but has no video attached is unsatisfiable, not vacuously complete.
func videoClauseMet(db *gorm.DB, userID uint, lesson *courseModels.Lesson) (bool, error) {
	if !lesson.RequireVideoWatch {
		return true, nil
	}
	if lesson.VideoStreamUID == "" && lesson.VideoURL == "" {
		return false, nil
	}
	var vp progressModels.VideoProgress
	err := db.Where("user_id = ? AND lesson_id = ?", userID, lesson.ID).First(&vp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, storeErr("load video progress", err)
	}
	return vp.Completed, nil
}

// assetsClauseMet checks that every required asset of the lesson has been
// downloaded at least once.
func assetsClauseMet(db *gorm.DB, userID uint, lesson *courseModels.Lesson) (bool, error) {
	var required []courseModels.LessonAsset
	err := db.Where("lesson_id = ? AND required = ? AND is_deleted = ?", lesson.ID, true, false).
		Find(&required).Error
	if err != nil {
		return false, storeErr("load required assets", err)
	}
	for _, asset := range required {
		var count int64
		err := db.Model(&progressModels.AssetProgress{}).
			Where("user_id = ? AND lesson_id = ? AND asset_id = ?", userID, lesson.ID, asset.ID).
			Count(&count).Error
		if err != nil {
			return false, storeErr("load asset progress", err)
		}
		if count == 0 {
			return false, nil
		}
	}
	return true, nil
}

// timeSpent returns the learner's accumulated time on the lesson, zero when no
// activity has been recorded yet.
func timeSpent(db *gorm.DB, userID, lessonID uint) (int64, error) {
	var record progressModels.ActivityRecord
	err := db.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, storeErr("load activity record", err)
	}
	return record.TimeSpentSeconds, nil
}

// quizForLesson returns the lesson's quiz, nil when none is attached.
func quizForLesson(db *gorm.DB, lessonID uint) (*courseModels.Quiz, error) {
	var quiz courseModels.Quiz
	err := db.Where("lesson_id = ? AND is_deleted = ?", lessonID, false).First(&quiz).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeErr("load quiz", err)
	}
	return &quiz, nil
}
