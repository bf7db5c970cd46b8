package progress

import (
	courseModels "lms/models/course"

	"gorm.io/gorm"
)

// HasPassedQuiz reports whether the learner's latest finalized quiz attempt
// meets the lesson's pass threshold. Latest attempt is authoritative: a learner
// who passes, retakes and fails is gated again. Attempts still being graded
// never count. Returns false when the lesson has no quiz or no finalized
// attempts exist.
func HasPassedQuiz(db *gorm.DB, userID uint, lesson *courseModels.Lesson) (bool, error) {
	quiz, err := quizForLesson(db, lesson.ID)
	if err != nil {
		return false, err
	}
	if quiz == nil {
		return false, nil
	}

	var attempts []courseModels.QuizAttempt
	err = db.Where("user_id = ? AND quiz_id = ? AND is_deleted = ? AND status IN ?",
		userID, quiz.ID, false, []string{courseModels.AttemptCompleted, courseModels.AttemptGraded}).
		Order("submitted_at desc").Limit(1).Find(&attempts).Error
	if err != nil {
		return false, storeErr("load quiz attempts", err)
	}
	if len(attempts) == 0 {
		return false, nil
	}

	threshold := quiz.PassingScore
	if lesson.MinimumPassingScore != nil {
		threshold = *lesson.MinimumPassingScore
	}
	return attempts[0].Percentage >= float64(threshold), nil
}

// CanAttemptQuiz decides whether the learner may open the lesson's quiz now.
// BEFORE and ANY placement always permit an attempt; AFTER placement requires
// the non-quiz content requirements (video watched, required assets
// downloaded) to be met first, plus any minimum time-on-lesson the settings
// demand. The quiz's own max-attempt ceiling is the quiz subsystem's concern.
func CanAttemptQuiz(db *gorm.DB, userID uint, lesson *courseModels.Lesson) (bool, error) {
	if lesson.ShowQuizAt != "AFTER" {
		return true, nil
	}

	ok, err := videoClauseMet(db, userID, lesson)
	if err != nil || !ok {
		return false, err
	}
	ok, err = assetsClauseMet(db, userID, lesson)
	if err != nil || !ok {
		return false, err
	}

	if lesson.MinimumTimeRequiredSeconds > 0 {
		spent, err := timeSpent(db, userID, lesson.ID)
		if err != nil {
			return false, err
		}
		if spent < int64(lesson.MinimumTimeRequiredSeconds) {
			return false, nil
		}
	}
	return true, nil
}
