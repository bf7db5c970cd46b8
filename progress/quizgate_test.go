package progress

import (
	"testing"

	courseModels "lms/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasPassedQuizLatestAttemptIsAuthoritative(t *testing.T) {
	db := setupTestDB(t)
	_, module := seedModule(t, db)
	lesson := seedLesson(t, db, module, 0, nil)
	quiz := seedQuiz(t, db, lesson.ID, 60)

	seedAttempt(t, db, 1, quiz.ID, courseModels.AttemptCompleted, 80, 1)
	passed, err := HasPassedQuiz(db, 1, lesson)
	require.NoError(t, err)
	assert.True(t, passed)

	// A later failing retake revokes the earlier pass
	seedAttempt(t, db, 1, quiz.ID, courseModels.AttemptCompleted, 40, 2)
	passed, err = HasPassedQuiz(db, 1, lesson)
	require.NoError(t, err)
	assert.False(t, passed)
}

func TestHasPassedQuizIgnoresUnfinalizedAttempts(t *testing.T) {
	db := setupTestDB(t)
	_, module := seedModule(t, db)
	lesson := seedLesson(t, db, module, 0, nil)
	quiz := seedQuiz(t, db, lesson.ID, 60)

	seedAttempt(t, db, 1, quiz.ID, courseModels.AttemptCompleted, 90, 1)
	// The newest attempt is still being graded; the gate falls back to the
	// newest finalized one
	seedAttempt(t, db, 1, quiz.ID, courseModels.AttemptGrading, 0, 2)

	passed, err := HasPassedQuiz(db, 1, lesson)
	require.NoError(t, err)
	assert.True(t, passed)
}

func TestHasPassedQuizInProgressNeverCounts(t *testing.T) {
	db := setupTestDB(t)
	_, module := seedModule(t, db)
	lesson := seedLesson(t, db, module, 0, nil)
	quiz := seedQuiz(t, db, lesson.ID, 60)

	seedAttempt(t, db, 1, quiz.ID, courseModels.AttemptInProgress, 100, 1)

	passed, err := HasPassedQuiz(db, 1, lesson)
	require.NoError(t, err)
	assert.False(t, passed)
}

func TestHasPassedQuizGradedAttemptCounts(t *testing.T) {
	db := setupTestDB(t)
	_, module := seedModule(t, db)
	lesson := seedLesson(t, db, module, 0, nil)
	quiz := seedQuiz(t, db, lesson.ID, 60)

	seedAttempt(t, db, 1, quiz.ID, courseModels.AttemptGraded, 65, 1)
	passed, err := HasPassedQuiz(db, 1, lesson)
	require.NoError(t, err)
	assert.True(t, passed)
}

func TestHasPassedQuizThresholdIsInclusive(t *testing.T) {
	db := setupTestDB(t)
	_, module := seedModule(t, db)
	lesson := seedLesson(t, db, module, 0, nil)
	quiz := seedQuiz(t, db, lesson.ID, 60)

	seedAttempt(t, db, 1, quiz.ID, courseModels.AttemptCompleted, 60, 1)
	passed, err := HasPassedQuiz(db, 1, lesson)
	require.NoError(t, err)
	assert.True(t, passed)

	seedAttempt(t, db, 1, quiz.ID, courseModels.AttemptCompleted, 59.9, 2)
	passed, err = HasPassedQuiz(db, 1, lesson)
	require.NoError(t, err)
	assert.False(t, passed)
}

func TestHasPassedQuizLessonOverridesQuizThreshold(t *testing.T) {
	db := setupTestDB(t)
	_, module := seedModule(t, db)
	override := 80
	lesson := seedLesson(t, db, module, 0, func(l *courseModels.Lesson) {
		l.MinimumPassingScore = &override
	})
	quiz := seedQuiz(t, db, lesson.ID, 60)

	// 70 passes the quiz default but not the lesson's stricter bar
	seedAttempt(t, db, 1, quiz.ID, courseModels.AttemptCompleted, 70, 1)
	passed, err := HasPassedQuiz(db, 1, lesson)
	require.NoError(t, err)
	assert.False(t, passed)
}

func TestHasPassedQuizNoQuizOrNoAttempts(t *testing.T) {
	db := setupTestDB(t)
	_, module := seedModule(t, db)
	lesson := seedLesson(t, db, module, 0, nil)

	passed, err := HasPassedQuiz(db, 1, lesson)
	require.NoError(t, err)
	assert.False(t, passed)

	seedQuiz(t, db, lesson.ID, 60)
	passed, err = HasPassedQuiz(db, 1, lesson)
	require.NoError(t, err)
	assert.False(t, passed)
}

func TestCanAttemptQuizPlacementBeforeAndAny(t *testing.T) {
	db := setupTestDB(t)
	_, module := seedModule(t, db)

	for _, placement := range []string{"BEFORE", "ANY"} {
		lesson := seedLesson(t, db, module, 0, func(l *courseModels.Lesson) {
			l.ShowQuizAt = placement
			l.RequireVideoWatch = true
			l.VideoStreamUID = "abc123"
		})
		ok, err := CanAttemptQuiz(db, 1, lesson)
		require.NoError(t, err)
		assert.True(t, ok, "placement %s", placement)
		require.NoError(t, db.Model(lesson).Update("is_deleted", true).Error)
	}
}

func TestCanAttemptQuizAfterPlacementGatesOnContent(t *testing.T) {
	db := setupTestDB(t)
	_, module := seedModule(t, db)
	lesson := seedLesson(t, db, module, 0, func(l *courseModels.Lesson) {
		l.ShowQuizAt = "AFTER"
		l.RequireVideoWatch = true
		l.VideoStreamUID = "abc123"
		l.MinimumTimeRequiredSeconds = 120
	})
	asset := seedAsset(t, db, lesson.ID, true)

	ok, err := CanAttemptQuiz(db, 1, lesson)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, RecordVideoTick(db, 1, lesson.ID, 600, 600, true))
	ok, err = CanAttemptQuiz(db, 1, lesson)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, RecordAssetDownload(db, 1, lesson.ID, asset.ID))
	ok, err = CanAttemptQuiz(db, 1, lesson)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, RecordTime(db, 1, lesson.ID, 120))
	ok, err = CanAttemptQuiz(db, 1, lesson)
	require.NoError(t, err)
	assert.True(t, ok)
}
