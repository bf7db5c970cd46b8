package progress

import (
	"fmt"
	"strings"
	"testing"
	"time"

	courseModels "lms/models/course"
	progressModels "lms/models/progress"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a per-test in-memory database with the full schema. The
// shared-cache DSN keeps the database alive across the pool's connections.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&courseModels.Course{},
		&courseModels.Module{},
		&courseModels.ModulePrerequisite{},
		&courseModels.Lesson{},
		&courseModels.LessonAsset{},
		&courseModels.Quiz{},
		&courseModels.QuizQuestion{},
		&courseModels.QuizOption{},
		&courseModels.QuizAttempt{},
		&progressModels.ActivityRecord{},
		&progressModels.VideoProgress{},
		&progressModels.AssetProgress{},
		&progressModels.ModuleProgress{},
	)
	require.NoError(t, err)
	return db
}

// seedModule creates a course with one module and returns both
func seedModule(t *testing.T, db *gorm.DB) (*courseModels.Course, *courseModels.Module) {
	t.Helper()

	course := &courseModels.Course{Title: "Test Course", IsPublished: true, Status: "ACTIVE"}
	require.NoError(t, db.Create(course).Error)

	module := &courseModels.Module{CourseID: course.ID, Title: "Test Module"}
	require.NoError(t, db.Create(module).Error)
	return course, module
}

// seedLesson creates a published lesson in the module at the given order
func seedLesson(t *testing.T, db *gorm.DB, module *courseModels.Module, orderIndex int, mutate func(*courseModels.Lesson)) *courseModels.Lesson {
	t.Helper()

	lesson := &courseModels.Lesson{
		CourseID:    module.CourseID,
		ModuleID:    module.ID,
		Title:       fmt.Sprintf("Lesson %d", orderIndex),
		OrderIndex:  orderIndex,
		IsPublished: true,
	}
	if mutate != nil {
		mutate(lesson)
	}
	require.NoError(t, db.Create(lesson).Error)
	return lesson
}

// seedAsset attaches a downloadable asset to a lesson
func seedAsset(t *testing.T, db *gorm.DB, lessonID uint, required bool) *courseModels.LessonAsset {
	t.Helper()

	asset := &courseModels.LessonAsset{
		LessonID: lessonID,
		Title:    "Workbook",
		FileURL:  "/uploads/lessons/workbook.pdf",
		Required: required,
	}
	require.NoError(t, db.Create(asset).Error)
	return asset
}

// seedQuiz attaches a quiz to a lesson
func seedQuiz(t *testing.T, db *gorm.DB, lessonID uint, passingScore int) *courseModels.Quiz {
	t.Helper()

	quiz := &courseModels.Quiz{LessonID: lessonID, Title: "Check", PassingScore: passingScore}
	require.NoError(t, db.Create(quiz).Error)
	return quiz
}

// seedAttempt records a quiz attempt with the given status and percentage
func seedAttempt(t *testing.T, db *gorm.DB, userID, quizID uint, status string, percentage float64, number int) *courseModels.QuizAttempt {
	t.Helper()

	submittedAt := attemptClock(number)
	attempt := &courseModels.QuizAttempt{
		UserID:        userID,
		QuizID:        quizID,
		Status:        status,
		Percentage:    percentage,
		Passed:        percentage >= 60,
		AttemptNumber: number,
		SubmittedAt:   &submittedAt,
	}
	require.NoError(t, db.Create(attempt).Error)
	return attempt
}

// attemptClock spaces attempt submission times a minute apart so recency
// ordering is deterministic
func attemptClock(number int) time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(number) * time.Minute)
}
