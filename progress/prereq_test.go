package progress

import (
	"testing"

	courseModels "lms/models/course"
	progressModels "lms/models/progress"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedPrereq(t *testing.T, db *gorm.DB, moduleID, prereqID uint, required float64) {
	t.Helper()
	edge := &courseModels.ModulePrerequisite{
		ModuleID:           moduleID,
		PrerequisiteID:     prereqID,
		RequiredCompletion: required,
	}
	require.NoError(t, db.Create(edge).Error)
}

func seedLedger(t *testing.T, db *gorm.DB, userID, courseID, moduleID uint, percent float64) {
	t.Helper()
	entry := &progressModels.ModuleProgress{
		UserID:   userID,
		CourseID: courseID,
		ModuleID: moduleID,
		Progress: percent,
	}
	require.NoError(t, db.Create(entry).Error)
}

func TestCanAccessModuleWithoutPrerequisites(t *testing.T) {
	db := setupTestDB(t)
	_, module := seedModule(t, db)

	ok, err := CanAccessModule(db, 1, module.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanAccessModuleThresholdIsInclusive(t *testing.T) {
	db := setupTestDB(t)
	course, module := seedModule(t, db)
	gated := &courseModels.Module{CourseID: course.ID, Title: "Gated"}
	require.NoError(t, db.Create(gated).Error)
	seedPrereq(t, db, gated.ID, module.ID, 80)

	seedLedger(t, db, 1, course.ID, module.ID, 79.9)
	ok, err := CanAccessModule(db, 1, gated.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, db.Model(&progressModels.ModuleProgress{}).
		Where("user_id = ? AND module_id = ?", 1, module.ID).
		Update("progress", 80).Error)
	ok, err = CanAccessModule(db, 1, gated.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanAccessModuleGatesOnLiveProgress(t *testing.T) {
	db := setupTestDB(t)
	course, module := seedModule(t, db)
	gated := &courseModels.Module{CourseID: course.ID, Title: "Gated"}
	require.NoError(t, db.Create(gated).Error)
	seedPrereq(t, db, gated.ID, module.ID, 45)

	lessons := make([]*courseModels.Lesson, 4)
	for i := range lessons {
		lessons[i] = seedLesson(t, db, module, i, nil)
	}
	_, err := UpdateOnCompletion(db, 1, course.ID, module.ID, lessons[0].ID, nil)
	require.NoError(t, err)
	_, err = UpdateOnCompletion(db, 1, course.ID, module.ID, lessons[1].ID, nil)
	require.NoError(t, err)

	// 2/4 = 50% clears the bar
	ok, err := CanAccessModule(db, 1, gated.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// A fifth lesson drops the true figure to 40%; the stored 50 must not
	// keep the gate open
	seedLesson(t, db, module, 4, nil)
	ok, err = CanAccessModule(db, 1, gated.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCanAccessModuleMissingLedgerCountsAsZero(t *testing.T) {
	db := setupTestDB(t)
	course, module := seedModule(t, db)
	gated := &courseModels.Module{CourseID: course.ID, Title: "Gated"}
	require.NoError(t, db.Create(gated).Error)
	seedPrereq(t, db, gated.ID, module.ID, 50)

	ok, err := CanAccessModule(db, 1, gated.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCanAccessModuleZeroRequirementAlwaysPasses(t *testing.T) {
	db := setupTestDB(t)
	course, module := seedModule(t, db)
	gated := &courseModels.Module{CourseID: course.ID, Title: "Gated"}
	require.NoError(t, db.Create(gated).Error)
	seedPrereq(t, db, gated.ID, module.ID, 0)

	// No ledger entry at all, but 0 >= 0
	ok, err := CanAccessModule(db, 1, gated.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanAccessModuleAllPrerequisitesMustPass(t *testing.T) {
	db := setupTestDB(t)
	course, first := seedModule(t, db)
	second := &courseModels.Module{CourseID: course.ID, Title: "Second"}
	gated := &courseModels.Module{CourseID: course.ID, Title: "Gated"}
	require.NoError(t, db.Create(second).Error)
	require.NoError(t, db.Create(gated).Error)
	seedPrereq(t, db, gated.ID, first.ID, 100)
	seedPrereq(t, db, gated.ID, second.ID, 100)

	seedLedger(t, db, 1, course.ID, first.ID, 100)
	seedLedger(t, db, 1, course.ID, second.ID, 60)

	ok, err := CanAccessModule(db, 1, gated.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCanAccessModuleIgnoresDeletedEdges(t *testing.T) {
	db := setupTestDB(t)
	course, module := seedModule(t, db)
	gated := &courseModels.Module{CourseID: course.ID, Title: "Gated"}
	require.NoError(t, db.Create(gated).Error)
	seedPrereq(t, db, gated.ID, module.ID, 100)

	require.NoError(t, db.Model(&courseModels.ModulePrerequisite{}).
		Where("module_id = ?", gated.ID).Update("is_deleted", true).Error)

	ok, err := CanAccessModule(db, 1, gated.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanAccessModuleUnknownModule(t *testing.T) {
	db := setupTestDB(t)

	_, err := CanAccessModule(db, 1, 999)
	var nfe *NotFoundError
	require.ErrorAs(t, err, &nfe)
	assert.Equal(t, "module", nfe.Resource)
}

func TestCanAccessLessonFirstLessonAlwaysReachable(t *testing.T) {
	db := setupTestDB(t)
	_, module := seedModule(t, db)
	lesson := seedLesson(t, db, module, 0, nil)

	ok, err := CanAccessLesson(db, 1, lesson)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanAccessLessonBlockedByPreviousQuiz(t *testing.T) {
	db := setupTestDB(t)
	_, module := seedModule(t, db)
	first := seedLesson(t, db, module, 0, func(l *courseModels.Lesson) {
		l.QuizRequired = true
		l.QuizBlocksProgress = true
	})
	second := seedLesson(t, db, module, 1, nil)
	quiz := seedQuiz(t, db, first.ID, 60)

	ok, err := CanAccessLesson(db, 1, second)
	require.NoError(t, err)
	assert.False(t, ok)

	seedAttempt(t, db, 1, quiz.ID, courseModels.AttemptCompleted, 70, 1)
	ok, err = CanAccessLesson(db, 1, second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanAccessLessonNonBlockingQuizDoesNotGate(t *testing.T) {
	db := setupTestDB(t)
	_, module := seedModule(t, db)
	first := seedLesson(t, db, module, 0, func(l *courseModels.Lesson) {
		l.QuizRequired = true
		l.QuizBlocksProgress = false
	})
	second := seedLesson(t, db, module, 1, nil)
	seedQuiz(t, db, first.ID, 60)

	ok, err := CanAccessLesson(db, 1, second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanAccessLessonSkipsDeletedPredecessor(t *testing.T) {
	db := setupTestDB(t)
	_, module := seedModule(t, db)
	blocked := seedLesson(t, db, module, 0, func(l *courseModels.Lesson) {
		l.QuizRequired = true
		l.QuizBlocksProgress = true
	})
	seedQuiz(t, db, blocked.ID, 60)
	third := seedLesson(t, db, module, 2, nil)

	// With the blocking lesson deleted, the next live predecessor decides
	require.NoError(t, db.Model(blocked).Update("is_deleted", true).Error)

	ok, err := CanAccessLesson(db, 1, third)
	require.NoError(t, err)
	assert.True(t, ok)
}
