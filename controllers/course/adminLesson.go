package controllers

import (
	"log"
	"path/filepath"

	"lms/config"
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/progress"
	"lms/utils"
	validation "lms/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CreateModuleLesson adds a lesson to a module. The order index must be unique
// among the module's live lessons; omitted, it defaults to the end.
func CreateModuleLesson(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	moduleID := c.Locals("moduleID").(int)
	body := c.Locals("validatedLesson").(*validation.LessonBody)

	var module courseModels.Module
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", moduleID, courseID, false).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	orderIndex := 0
	if body.OrderIndex != nil {
		orderIndex = *body.OrderIndex
		var clash int64
		database.Database.Db.Model(&courseModels.Lesson{}).
			Where("module_id = ? AND order_index = ? AND is_deleted = ?", moduleID, orderIndex, false).Count(&clash)
		if clash > 0 {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "A lesson already uses this order index!", nil)
		}
	} else {
		var count int64
		database.Database.Db.Model(&courseModels.Lesson{}).
			Where("module_id = ? AND is_deleted = ?", moduleID, false).Count(&count)
		orderIndex = int(count)
	}

	lesson := courseModels.Lesson{
		CourseID:    uint(courseID),
		ModuleID:    uint(moduleID),
		Title:       body.Title,
		Description: body.Description,
		OrderIndex:  orderIndex,

		RequireVideoWatch:       body.RequireVideoWatch,
		MinimumTimeSpentSeconds: body.MinimumTimeSpentSeconds,

		QuizRequired:               body.QuizRequired,
		MinimumPassingScore:        body.MinimumPassingScore,
		QuizBlocksProgress:         body.QuizBlocksProgress,
		MinimumTimeRequiredSeconds: body.MinimumTimeRequiredSeconds,
	}
	if body.ShowQuizAt != "" {
		lesson.ShowQuizAt = body.ShowQuizAt
	}

	if err := database.Database.Db.Create(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson created successfully!", lesson)
}

// UpdateModuleLesson updates a lesson's content and requirement settings
func UpdateModuleLesson(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	lessonID := c.Locals("lessonID").(int)
	body := c.Locals("validatedLesson").(*validation.LessonBody)

	var lesson courseModels.Lesson
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", lessonID, courseID, false).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	if body.OrderIndex != nil && *body.OrderIndex != lesson.OrderIndex {
		var clash int64
		database.Database.Db.Model(&courseModels.Lesson{}).
			Where("module_id = ? AND order_index = ? AND is_deleted = ? AND id <> ?", lesson.ModuleID, *body.OrderIndex, false, lesson.ID).Count(&clash)
		if clash > 0 {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "A lesson already uses this order index!", nil)
		}
		lesson.OrderIndex = *body.OrderIndex
	}

	lesson.Title = body.Title
	lesson.Description = body.Description
	lesson.RequireVideoWatch = body.RequireVideoWatch
	lesson.MinimumTimeSpentSeconds = body.MinimumTimeSpentSeconds
	lesson.QuizRequired = body.QuizRequired
	lesson.MinimumPassingScore = body.MinimumPassingScore
	lesson.QuizBlocksProgress = body.QuizBlocksProgress
	lesson.MinimumTimeRequiredSeconds = body.MinimumTimeRequiredSeconds
	if body.ShowQuizAt != "" {
		lesson.ShowQuizAt = body.ShowQuizAt
	}

	if err := database.Database.Db.Save(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson updated successfully!", lesson)
}

// PublishLesson makes a lesson visible to learners
func PublishLesson(c *fiber.Ctx) error {
	courseID, err1 := c.ParamsInt("course_id")
	lessonID, err2 := c.ParamsInt("lesson_id")
	if err1 != nil || err2 != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid lesson ID!", nil)
	}

	var lesson courseModels.Lesson
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", lessonID, courseID, false).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	lesson.IsPublished = true
	if err := database.Database.Db.Save(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to publish lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson published successfully!", lesson)
}

// DeleteModuleLesson soft-deletes a lesson and closes the hole it leaves in
// the module's lesson ordering
func DeleteModuleLesson(c *fiber.Ctx) error {
	courseID, err1 := c.ParamsInt("course_id")
	lessonID, err2 := c.ParamsInt("lesson_id")
	if err1 != nil || err2 != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid lesson ID!", nil)
	}

	var lesson courseModels.Lesson
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", lessonID, courseID, false).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	err := database.Database.Db.Transaction(func(tx *gorm.DB) error {
		lesson.IsDeleted = true
		lesson.IsPublished = false
		if err := tx.Save(&lesson).Error; err != nil {
			return err
		}

		var rest []courseModels.Lesson
		if err := tx.Where("module_id = ? AND is_deleted = ?", lesson.ModuleID, false).
			Order("order_index asc").Find(&rest).Error; err != nil {
			return err
		}
		for i := range rest {
			if rest[i].OrderIndex != i {
				if err := tx.Model(&rest[i]).UpdateColumn("order_index", i).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson deleted successfully!", nil)
}

// AttachLessonVideo attaches or replaces a lesson's video. Replacing a video
// deletes the old stream upload and resets every learner's watch state for the
// lesson, since the old accumulators describe a video that no longer exists.
func AttachLessonVideo(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	lessonID := c.Locals("lessonID").(int)
	body := c.Locals("validatedVideo").(*validation.VideoBody)

	var lesson courseModels.Lesson
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", lessonID, courseID, false).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	oldStreamUID := lesson.VideoStreamUID
	replacing := oldStreamUID != "" && oldStreamUID != body.StreamUID

	lesson.VideoStreamUID = body.StreamUID
	lesson.VideoURL = body.VideoURL
	lesson.VideoDuration = body.Duration

	if err := database.Database.Db.Save(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to attach video!", nil)
	}

	if replacing {
		if err := utils.DeleteStreamVideo(oldStreamUID); err != nil {
			log.Printf("Failed to delete replaced stream video %s: %v", oldStreamUID, err)
		}
		if err := progress.ResetVideoProgress(database.Database.Db, uint(lessonID)); err != nil {
			log.Printf("Failed to reset video progress for lesson %d: %v", lessonID, err)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Video attached successfully!", lesson)
}

// CreateVideoUploadURL requests a one-time direct upload URL from the stream
// provider for the admin's upload client
func CreateVideoUploadURL(c *fiber.Ctx) error {
	ticket, err := utils.CreateStreamUploadURL(4 * 3600)
	if err != nil {
		log.Printf("Failed to create stream upload URL: %v", err)
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Failed to create upload URL!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Upload URL created successfully!", ticket)
}

// UploadLessonAsset stores a downloadable file against a lesson. The required
// flag comes from the multipart form alongside the file.
func UploadLessonAsset(c *fiber.Ctx) error {
	courseID, err1 := c.ParamsInt("course_id")
	lessonID, err2 := c.ParamsInt("lesson_id")
	if err1 != nil || err2 != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid lesson ID!", nil)
	}

	var lesson courseModels.Lesson
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", lessonID, courseID, false).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "No file uploaded!", nil)
	}

	destDir := filepath.Join(config.AppConfig.AssetUploadDir, "lessons")
	storedPath, err := utils.SaveUploadedFile(file, destDir)
	if err != nil {
		log.Printf("Failed to store lesson asset: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to store file!", nil)
	}

	title := c.FormValue("title")
	if title == "" {
		title = file.Filename
	}

	asset := courseModels.LessonAsset{
		LessonID: uint(lessonID),
		Title:    title,
		FileURL:  utils.GetFileURL(storedPath),
		FileSize: file.Size,
		Required: c.FormValue("required") == "true",
	}
	if err := database.Database.Db.Create(&asset).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save asset!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Asset uploaded successfully!", asset)
}

// DeleteLessonAsset soft-deletes a lesson asset
func DeleteLessonAsset(c *fiber.Ctx) error {
	lessonID, err1 := c.ParamsInt("lesson_id")
	assetID, err2 := c.ParamsInt("asset_id")
	if err1 != nil || err2 != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid asset ID!", nil)
	}

	var asset courseModels.LessonAsset
	if err := database.Database.Db.Where("id = ? AND lesson_id = ? AND is_deleted = ?", assetID, lessonID, false).First(&asset).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Asset not found!", nil)
	}

	asset.IsDeleted = true
	if err := database.Database.Db.Save(&asset).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete asset!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Asset deleted successfully!", nil)
}

// CreateLessonQuiz attaches a quiz to a lesson. A lesson carries at most one
// live quiz.
func CreateLessonQuiz(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	lessonID := c.Locals("lessonID").(int)
	body := c.Locals("validatedQuiz").(*validation.QuizBody)

	var lesson courseModels.Lesson
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", lessonID, courseID, false).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	var existing courseModels.Quiz
	if err := database.Database.Db.Where("lesson_id = ? AND is_deleted = ?", lessonID, false).First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "This lesson already has a quiz!", nil)
	}

	quiz := courseModels.Quiz{
		LessonID:     uint(lessonID),
		Title:        body.Title,
		PassingScore: body.PassingScore,
		MaxAttempts:  body.MaxAttempts,
	}
	if quiz.PassingScore == 0 {
		quiz.PassingScore = 60
	}
	if err := database.Database.Db.Create(&quiz).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create quiz!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz created successfully!", quiz)
}

// AddQuizQuestion adds a question (with options for MCQ) to a quiz
func AddQuizQuestion(c *fiber.Ctx) error {
	quizID := c.Locals("quizID").(int)
	body := c.Locals("validatedQuestion").(*validation.QuestionBody)

	var quiz courseModels.Quiz
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", quizID, false).First(&quiz).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	questionType := body.QuestionType
	if questionType == "" {
		questionType = "MCQ"
	}
	if questionType == "MCQ" {
		correct := 0
		for _, option := range body.Options {
			if option.IsCorrect {
				correct++
			}
		}
		if len(body.Options) < 2 || correct == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Choice questions need at least two options and a correct answer!", nil)
		}
	}

	var count int64
	database.Database.Db.Model(&courseModels.QuizQuestion{}).
		Where("quiz_id = ? AND is_deleted = ?", quizID, false).Count(&count)

	question := courseModels.QuizQuestion{
		QuizID:       uint(quizID),
		QuestionText: body.QuestionText,
		QuestionType: questionType,
		Points:       body.Points,
		OrderIndex:   int(count),
	}

	err := database.Database.Db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&question).Error; err != nil {
			return err
		}
		for i, option := range body.Options {
			record := courseModels.QuizOption{
				QuestionID: question.ID,
				OptionText: option.OptionText,
				IsCorrect:  option.IsCorrect,
				OrderIndex: i,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to add question!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Question added successfully!", question)
}
