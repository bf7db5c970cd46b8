package progress

import (
	"testing"

	courseModels "lms/models/course"
	progressModels "lms/models/progress"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateOnCompletionCreatesEntryAndComputesProgress(t *testing.T) {
	db := setupTestDB(t)
	course, module := seedModule(t, db)

	lessons := make([]*courseModels.Lesson, 4)
	for i := range lessons {
		lessons[i] = seedLesson(t, db, module, i, nil)
	}

	result, err := UpdateOnCompletion(db, 1, course.ID, module.ID, lessons[0].ID, nil)
	require.NoError(t, err)
	require.True(t, result.Completed)
	assert.InDelta(t, 25, result.Progress, 0.001)
	assert.Equal(t, []uint{lessons[0].ID}, result.CompletedLessons)
	assert.Empty(t, result.CompletedQuizzes)

	result, err = UpdateOnCompletion(db, 1, course.ID, module.ID, lessons[1].ID, nil)
	require.NoError(t, err)
	assert.InDelta(t, 50, result.Progress, 0.001)

	entry, err := LedgerEntry(db, 1, module.ID)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.InDelta(t, 50, entry.Progress, 0.001)
	assert.ElementsMatch(t, []uint{lessons[0].ID, lessons[1].ID}, entry.LessonIDs())
}

func TestUpdateOnCompletionIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	course, module := seedModule(t, db)
	lesson := seedLesson(t, db, module, 0, nil)
	seedLesson(t, db, module, 1, nil)

	first, err := UpdateOnCompletion(db, 1, course.ID, module.ID, lesson.ID, nil)
	require.NoError(t, err)
	second, err := UpdateOnCompletion(db, 1, course.ID, module.ID, lesson.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, first.Progress, second.Progress)
	assert.Equal(t, first.CompletedLessons, second.CompletedLessons)

	var count int64
	require.NoError(t, db.Model(&progressModels.ModuleProgress{}).
		Where("user_id = ? AND module_id = ?", 1, module.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpdateOnCompletionUnmetRequirementsWriteNothing(t *testing.T) {
	db := setupTestDB(t)
	course, module := seedModule(t, db)
	lesson := seedLesson(t, db, module, 0, func(l *courseModels.Lesson) {
		l.MinimumTimeSpentSeconds = 600
	})

	result, err := UpdateOnCompletion(db, 1, course.ID, module.ID, lesson.ID, nil)
	require.NoError(t, err)
	assert.False(t, result.Completed)
	assert.Equal(t, []string{ClauseTime}, result.UnmetRequirements)

	entry, err := LedgerEntry(db, 1, module.ID)
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestUpdateOnCompletionRejectsLessonOutsideModule(t *testing.T) {
	db := setupTestDB(t)
	course, module := seedModule(t, db)
	other := &courseModels.Module{CourseID: course.ID, Title: "Other"}
	require.NoError(t, db.Create(other).Error)
	lesson := seedLesson(t, db, other, 0, nil)

	_, err := UpdateOnCompletion(db, 1, course.ID, module.ID, lesson.ID, nil)
	var nfe *NotFoundError
	require.ErrorAs(t, err, &nfe)
}

func TestUpdateOnCompletionRecordsPassedQuiz(t *testing.T) {
	db := setupTestDB(t)
	course, module := seedModule(t, db)
	lesson := seedLesson(t, db, module, 0, func(l *courseModels.Lesson) {
		l.QuizRequired = true
	})
	quiz := seedQuiz(t, db, lesson.ID, 60)
	seedAttempt(t, db, 1, quiz.ID, courseModels.AttemptCompleted, 85, 1)

	result, err := UpdateOnCompletion(db, 1, course.ID, module.ID, lesson.ID, &quiz.ID)
	require.NoError(t, err)
	require.True(t, result.Completed)
	assert.Equal(t, []uint{quiz.ID}, result.CompletedQuizzes)
}

func TestUpdateOnCompletionSkipsQuizNotPassed(t *testing.T) {
	db := setupTestDB(t)
	course, module := seedModule(t, db)
	lesson := seedLesson(t, db, module, 0, nil)
	quiz := seedQuiz(t, db, lesson.ID, 60)
	seedAttempt(t, db, 1, quiz.ID, courseModels.AttemptCompleted, 30, 1)

	// Quiz is not required, so the lesson completes, but the failed quiz
	// stays out of the completed set
	result, err := UpdateOnCompletion(db, 1, course.ID, module.ID, lesson.ID, &quiz.ID)
	require.NoError(t, err)
	require.True(t, result.Completed)
	assert.Empty(t, result.CompletedQuizzes)
}

func TestLedgerEntryReflectsLiveLessonCount(t *testing.T) {
	db := setupTestDB(t)
	course, module := seedModule(t, db)

	lessons := make([]*courseModels.Lesson, 4)
	for i := range lessons {
		lessons[i] = seedLesson(t, db, module, i, nil)
	}

	_, err := UpdateOnCompletion(db, 1, course.ID, module.ID, lessons[0].ID, nil)
	require.NoError(t, err)
	_, err = UpdateOnCompletion(db, 1, course.ID, module.ID, lessons[1].ID, nil)
	require.NoError(t, err)

	// A fifth lesson dilutes 2/4 into 2/5. The stored row still says 50, but
	// the very next read must report 40.
	seedLesson(t, db, module, 4, nil)

	var raw progressModels.ModuleProgress
	require.NoError(t, db.Where("user_id = ? AND module_id = ?", 1, module.ID).First(&raw).Error)
	assert.InDelta(t, 50, raw.Progress, 0.001)

	entry, err := LedgerEntry(db, 1, module.ID)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.InDelta(t, 40, entry.Progress, 0.001)

	// The read healed the stored row, so a direct recompute finds no drift
	require.NoError(t, db.Where("user_id = ? AND module_id = ?", 1, module.ID).First(&raw).Error)
	assert.InDelta(t, 40, raw.Progress, 0.001)

	changed, err := RecomputeProgress(db, entry)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestRecomputeProgressKeepsEmptyModuleFigure(t *testing.T) {
	db := setupTestDB(t)
	course, module := seedModule(t, db)
	lesson := seedLesson(t, db, module, 0, nil)

	_, err := UpdateOnCompletion(db, 1, course.ID, module.ID, lesson.ID, nil)
	require.NoError(t, err)

	// With every lesson deleted the denominator is gone; the last recorded
	// figure stands, same as the completion write path
	require.NoError(t, db.Model(lesson).Update("is_deleted", true).Error)

	entry, err := LedgerEntry(db, 1, module.ID)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.InDelta(t, 100, entry.Progress, 0.001)
}

func TestLedgerEntriesAreIsolatedPerUser(t *testing.T) {
	db := setupTestDB(t)
	course, module := seedModule(t, db)
	lesson := seedLesson(t, db, module, 0, nil)
	seedLesson(t, db, module, 1, nil)

	_, err := UpdateOnCompletion(db, 1, course.ID, module.ID, lesson.ID, nil)
	require.NoError(t, err)

	entry, err := LedgerEntry(db, 2, module.ID)
	require.NoError(t, err)
	assert.Nil(t, entry)
}
