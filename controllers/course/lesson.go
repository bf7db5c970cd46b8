package controllers

import (
	"errors"
	"log"

	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	progressModels "lms/models/progress"
	"lms/progress"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
)

// GetModuleLessons lists the lessons of a module for an enrolled user, with
// completion and gating state per lesson
func GetModuleLessons(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)
	moduleID := c.Locals("moduleID").(int)

	var module courseModels.Module
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", moduleID, courseID, false).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	if _, covered := enrollmentForModule(userID, uint(courseID), uint(moduleID)); !covered {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Please enroll in this course first!", nil)
	}

	accessible, err := progress.CanAccessModule(database.Database.Db, userID, uint(moduleID))
	if err != nil {
		return progressErrorResponse(c, err)
	}
	if !accessible {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Complete the prerequisite modules first!", nil)
	}

	var lessons []courseModels.Lesson
	if err := database.Database.Db.Where("module_id = ? AND is_deleted = ? AND is_published = ?", moduleID, false, true).
		Order("order_index asc").Find(&lessons).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch lessons!", nil)
	}

	completed := map[uint]bool{}
	if entry, err := progress.LedgerEntry(database.Database.Db, userID, uint(moduleID)); err == nil && entry != nil {
		for _, id := range entry.LessonIDs() {
			completed[id] = true
		}
	}

	type LessonWithState struct {
		courseModels.Lesson
		IsCompleted bool `json:"is_completed"`
		Accessible  bool `json:"accessible"`
	}

	result := make([]LessonWithState, len(lessons))
	for i, lesson := range lessons {
		result[i] = LessonWithState{
			Lesson:      lesson,
			IsCompleted: completed[lesson.ID],
		}
		canAccess, err := progress.CanAccessLesson(database.Database.Db, userID, &lessons[i])
		if err == nil {
			result[i].Accessible = canAccess
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lessons fetched successfully!", fiber.Map{
		"module":  module,
		"lessons": result,
	})
}

// GetLessonDetail serves a lesson's gated content: assets, a signed playback
// token for the video, and the learner's current activity state. Sequential
// quiz gating is enforced here — the previous lesson's blocking quiz must be
// passed before this lesson's content is served.
func GetLessonDetail(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)
	lessonID := c.Locals("lessonID").(int)

	var lesson courseModels.Lesson
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ? AND is_published = ?", lessonID, courseID, false, true).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	if _, covered := enrollmentForModule(userID, uint(courseID), lesson.ModuleID); !covered {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Please enroll in this course first!", nil)
	}

	accessible, err := progress.CanAccessModule(database.Database.Db, userID, lesson.ModuleID)
	if err != nil {
		return progressErrorResponse(c, err)
	}
	if !accessible {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Complete the prerequisite modules first!", nil)
	}

	canAccess, err := progress.CanAccessLesson(database.Database.Db, userID, &lesson)
	if err != nil {
		return progressErrorResponse(c, err)
	}
	if !canAccess {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Pass the previous lesson's quiz to unlock this lesson!", nil)
	}

	var assets []courseModels.LessonAsset
	database.Database.Db.Where("lesson_id = ? AND is_deleted = ?", lessonID, false).Find(&assets)

	playbackToken := ""
	if lesson.VideoStreamUID != "" {
		token, err := utils.GetSignedPlaybackToken(lesson.VideoStreamUID)
		if err != nil {
			log.Printf("Failed to sign playback token for lesson %d: %v", lessonID, err)
		} else {
			playbackToken = token
		}
	}

	var videoState progressModels.VideoProgress
	database.Database.Db.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&videoState)

	quiz, _ := quizByLessonID(uint(lessonID))
	canAttempt := false
	if quiz != nil {
		canAttempt, _ = progress.CanAttemptQuiz(database.Database.Db, userID, &lesson)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson fetched successfully!", fiber.Map{
		"lesson":           lesson,
		"assets":           assets,
		"playback_token":   playbackToken,
		"video_progress":   videoState,
		"has_quiz":         quiz != nil,
		"can_attempt_quiz": canAttempt,
	})
}

// quizByLessonID fetches the non-deleted quiz of a lesson, nil when absent
func quizByLessonID(lessonID uint) (*courseModels.Quiz, error) {
	var quiz courseModels.Quiz
	err := database.Database.Db.Where("lesson_id = ? AND is_deleted = ?", lessonID, false).First(&quiz).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

// progressErrorResponse maps progress engine errors onto HTTP statuses. An
// infrastructure failure must never read as "requirement unmet", so it gets a
// 5xx while domain negatives stay 4xx.
func progressErrorResponse(c *fiber.Ctx, err error) error {
	var nfe *progress.NotFoundError
	var iae *progress.InvalidAssetError
	var cce *progress.ConcurrencyError
	if errors.As(err, &nfe) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Resource not found!", nil)
	}
	if errors.As(err, &iae) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Asset does not belong to this lesson!", nil)
	}
	if errors.As(err, &cce) {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Progress update conflicted, please retry!", nil)
	}
	log.Printf("Progress engine failure: %v", err)
	return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to evaluate progress!", nil)
}
