package controllers

import (
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/progress"
	validation "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// RecordLessonTime accumulates heartbeat seconds against a lesson. Negative
// deltas are rejected by the validator; the store clamps as well.
func RecordLessonTime(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	lessonID := c.Locals("lessonID").(int)
	body := c.Locals("validatedTimeTick").(*validation.TimeTickBody)

	lesson, forbidden := gatedLesson(c, userID, lessonID)
	if lesson == nil {
		return forbidden
	}

	if err := progress.RecordTime(database.Database.Db, userID, uint(lessonID), body.Seconds); err != nil {
		return progressErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Time recorded successfully!", nil)
}

// RecordVideoProgress upserts the learner's video watch state for a lesson
func RecordVideoProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	lessonID := c.Locals("lessonID").(int)
	body := c.Locals("validatedVideoTick").(*validation.VideoTickBody)

	lesson, forbidden := gatedLesson(c, userID, lessonID)
	if lesson == nil {
		return forbidden
	}
	if lesson.VideoStreamUID == "" && lesson.VideoURL == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "This lesson has no video!", nil)
	}

	if err := progress.RecordVideoTick(database.Database.Db, userID, uint(lessonID), body.Position, body.Seconds, body.Completed); err != nil {
		return progressErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Video progress recorded successfully!", nil)
}

// DownloadLessonAsset marks an asset downloaded for the learner and returns
// its file URL
func DownloadLessonAsset(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	lessonID := c.Locals("lessonID").(int)
	assetID := c.Locals("assetID").(int)

	lesson, forbidden := gatedLesson(c, userID, lessonID)
	if lesson == nil {
		return forbidden
	}

	if err := progress.RecordAssetDownload(database.Database.Db, userID, uint(lessonID), uint(assetID)); err != nil {
		return progressErrorResponse(c, err)
	}

	var asset courseModels.LessonAsset
	if err := database.Database.Db.Where("id = ? AND lesson_id = ? AND is_deleted = ?", assetID, lessonID, false).First(&asset).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Asset not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Asset download recorded!", fiber.Map{
		"file_url": asset.FileURL,
	})
}

// MarkLessonComplete runs the completion gate for a lesson. When requirements
// are unmet the response is still 200, with the unmet clause names in the
// body, so clients can render a checklist instead of an error page.
func MarkLessonComplete(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)
	lessonID := c.Locals("lessonID").(int)

	lesson, forbidden := gatedLesson(c, userID, lessonID)
	if lesson == nil {
		return forbidden
	}
	if lesson.CourseID != uint(courseID) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	var quizID *uint
	if quiz, err := quizByLessonID(uint(lessonID)); err == nil && quiz != nil {
		quizID = &quiz.ID
	}

	result, err := progress.UpdateOnCompletion(database.Database.Db, userID, uint(courseID), lesson.ModuleID, uint(lessonID), quizID)
	if err != nil {
		return progressErrorResponse(c, err)
	}

	if !result.Completed {
		return middleware.JsonResponse(c, fiber.StatusOK, false, "Lesson requirements not yet met!", result)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson completed successfully!", result)
}

// GetModuleProgress returns the learner's ledger entry for a module
func GetModuleProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	moduleID := c.Locals("moduleID").(int)

	var module courseModels.Module
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", moduleID, false).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	entry, err := progress.LedgerEntry(database.Database.Db, userID, uint(moduleID))
	if err != nil {
		return progressErrorResponse(c, err)
	}

	if entry == nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Module progress fetched successfully!", fiber.Map{
			"module_id":         moduleID,
			"progress":          0,
			"completed_lessons": []uint{},
			"completed_quizzes": []uint{},
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module progress fetched successfully!", fiber.Map{
		"module_id":         moduleID,
		"progress":          entry.Progress,
		"completed_lessons": entry.LessonIDs(),
		"completed_quizzes": entry.QuizIDs(),
		"last_accessed":     entry.LastAccessed,
	})
}

// GetCourseProgress aggregates the learner's per-module ledger entries for a
// course into an overall percentage
func GetCourseProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var modules []courseModels.Module
	if err := database.Database.Db.Where("course_id = ? AND is_deleted = ?", courseID, false).Order("order_index asc").Find(&modules).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch modules!", nil)
	}

	type ModuleProgressView struct {
		ModuleID uint    `json:"module_id"`
		Title    string  `json:"title"`
		Progress float64 `json:"progress"`
	}

	views := make([]ModuleProgressView, 0, len(modules))
	total := 0.0
	for _, module := range modules {
		view := ModuleProgressView{ModuleID: module.ID, Title: module.Title}
		entry, err := progress.LedgerEntry(database.Database.Db, userID, module.ID)
		if err != nil {
			return progressErrorResponse(c, err)
		}
		if entry != nil {
			view.Progress = entry.Progress
		}
		total += view.Progress
		views = append(views, view)
	}

	overall := 0.0
	if len(views) > 0 {
		overall = total / float64(len(views))
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course progress fetched successfully!", fiber.Map{
		"course_id": courseID,
		"overall":   overall,
		"modules":   views,
	})
}

// gatedLesson loads a lesson and enforces enrollment plus the module
// prerequisite gate. Returns (nil, response) when the caller may not proceed.
func gatedLesson(c *fiber.Ctx, userID uint, lessonID int) (*courseModels.Lesson, error) {
	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return nil, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	var lesson courseModels.Lesson
	if err := database.Database.Db.Where("id = ? AND is_deleted = ? AND is_published = ?", lessonID, false, true).First(&lesson).Error; err != nil {
		return nil, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	if _, covered := enrollmentForModule(userID, lesson.CourseID, lesson.ModuleID); !covered {
		return nil, middleware.JsonResponse(c, fiber.StatusForbidden, false, "Please enroll in this course first!", nil)
	}

	accessible, err := progress.CanAccessModule(database.Database.Db, userID, lesson.ModuleID)
	if err != nil {
		return nil, progressErrorResponse(c, err)
	}
	if !accessible {
		return nil, middleware.JsonResponse(c, fiber.StatusForbidden, false, "Complete the prerequisite modules first!", nil)
	}

	return &lesson, nil
}
