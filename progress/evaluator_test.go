package progress

import (
	"testing"

	courseModels "lms/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSatisfiedTriviallyWithoutRequirements(t *testing.T) {
	db := setupTestDB(t)
	_, module := seedModule(t, db)
	lesson := seedLesson(t, db, module, 0, nil)

	ok, unmet, err := IsSatisfied(db, 1, lesson)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, unmet)
}

func TestIsSatisfiedVideoRequirement(t *testing.T) {
	db := setupTestDB(t)
	_, module := seedModule(t, db)
	lesson := seedLesson(t, db, module, 0, func(l *courseModels.Lesson) {
		l.RequireVideoWatch = true
		l.VideoStreamUID = "abc123"
	})

	ok, unmet, err := IsSatisfied(db, 1, lesson)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{ClauseVideo}, unmet)

	// Watching without finishing is not enough
	require.NoError(t, RecordVideoTick(db, 1, lesson.ID, 120, 120, false))
	ok, _, err = IsSatisfied(db, 1, lesson)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, RecordVideoTick(db, 1, lesson.ID, 600, 480, true))
	ok, unmet, err = IsSatisfied(db, 1, lesson)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, unmet)
}

func TestIsSatisfiedVideoRequiredButNoVideoAttached(t *testing.T) {
	db := setupTestDB(t)
	_, module := seedModule(t, db)
	lesson := seedLesson(t, db, module, 0, func(l *courseModels.Lesson) {
		l.RequireVideoWatch = true
	})

	// No video to watch means the requirement can never be met, it is not
	// vacuously satisfied
	ok, unmet, err := IsSatisfied(db, 1, lesson)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{ClauseVideo}, unmet)
}

func TestIsSatisfiedRequiredAssets(t *testing.T) {
	db := setupTestDB(t)
	_, module := seedModule(t, db)
	lesson := seedLesson(t, db, module, 0, nil)
	required := seedAsset(t, db, lesson.ID, true)
	optional := seedAsset(t, db, lesson.ID, false)

	// Downloading only the optional asset leaves the clause unmet
	require.NoError(t, RecordAssetDownload(db, 1, lesson.ID, optional.ID))
	ok, unmet, err := IsSatisfied(db, 1, lesson)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{ClauseAssets}, unmet)

	require.NoError(t, RecordAssetDownload(db, 1, lesson.ID, required.ID))
	ok, _, err = IsSatisfied(db, 1, lesson)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIsSatisfiedMinimumTime(t *testing.T) {
	db := setupTestDB(t)
	_, module := seedModule(t, db)
	lesson := seedLesson(t, db, module, 0, func(l *courseModels.Lesson) {
		l.MinimumTimeSpentSeconds = 300
	})

	require.NoError(t, RecordTime(db, 1, lesson.ID, 299))
	ok, unmet, err := IsSatisfied(db, 1, lesson)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{ClauseTime}, unmet)

	require.NoError(t, RecordTime(db, 1, lesson.ID, 1))
	ok, _, err = IsSatisfied(db, 1, lesson)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIsSatisfiedQuizRequirement(t *testing.T) {
	db := setupTestDB(t)
	_, module := seedModule(t, db)
	lesson := seedLesson(t, db, module, 0, func(l *courseModels.Lesson) {
		l.QuizRequired = true
	})
	quiz := seedQuiz(t, db, lesson.ID, 60)

	ok, unmet, err := IsSatisfied(db, 1, lesson)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{ClauseQuiz}, unmet)

	seedAttempt(t, db, 1, quiz.ID, courseModels.AttemptCompleted, 75, 1)
	ok, _, err = IsSatisfied(db, 1, lesson)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIsSatisfiedQuizRequiredButNoQuizAttached(t *testing.T) {
	db := setupTestDB(t)
	_, module := seedModule(t, db)
	lesson := seedLesson(t, db, module, 0, func(l *courseModels.Lesson) {
		l.QuizRequired = true
	})

	// The flag without an attached quiz gates nothing
	ok, unmet, err := IsSatisfied(db, 1, lesson)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, unmet)
}

func TestIsSatisfiedReportsFirstFailedClause(t *testing.T) {
	db := setupTestDB(t)
	_, module := seedModule(t, db)
	lesson := seedLesson(t, db, module, 0, func(l *courseModels.Lesson) {
		l.RequireVideoWatch = true
		l.VideoStreamUID = "abc123"
		l.MinimumTimeSpentSeconds = 300
	})

	// Both video and time are unmet; evaluation stops at the video clause
	ok, unmet, err := IsSatisfied(db, 1, lesson)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{ClauseVideo}, unmet)
}
