package controllers

import (
	"log"
	"time"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/progress"
	validation "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// GetLessonQuiz serves a lesson's quiz for taking. Correct-answer flags are
// stripped, and the quiz timing policy plus attempt ceiling are enforced
// before any questions are shown.
func GetLessonQuiz(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	lessonID := c.Locals("lessonID").(int)

	lesson, forbidden := gatedLesson(c, userID, lessonID)
	if lesson == nil {
		return forbidden
	}

	quiz, err := quizByLessonID(uint(lessonID))
	if err != nil || quiz == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "This lesson has no quiz!", nil)
	}

	canAttempt, err := progress.CanAttemptQuiz(database.Database.Db, userID, lesson)
	if err != nil {
		return progressErrorResponse(c, err)
	}
	if !canAttempt {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Finish the lesson content before attempting the quiz!", nil)
	}

	var attemptCount int64
	database.Database.Db.Model(&courseModels.QuizAttempt{}).
		Where("user_id = ? AND quiz_id = ?", userID, quiz.ID).Count(&attemptCount)
	if quiz.MaxAttempts > 0 && attemptCount >= int64(quiz.MaxAttempts) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Maximum quiz attempts reached!", nil)
	}

	var questions []courseModels.QuizQuestion
	if err := database.Database.Db.Where("quiz_id = ? AND is_deleted = ?", quiz.ID, false).
		Order("order_index asc").Find(&questions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch quiz!", nil)
	}

	type OptionView struct {
		ID   uint   `json:"id"`
		Text string `json:"text"`
	}
	type QuestionView struct {
		ID           uint         `json:"id"`
		QuestionText string       `json:"question_text"`
		QuestionType string       `json:"question_type"`
		Points       int          `json:"points"`
		Options      []OptionView `json:"options"`
	}

	views := make([]QuestionView, 0, len(questions))
	for _, question := range questions {
		view := QuestionView{
			ID:           question.ID,
			QuestionText: question.QuestionText,
			QuestionType: question.QuestionType,
			Points:       question.Points,
			Options:      []OptionView{},
		}
		var options []courseModels.QuizOption
		database.Database.Db.Where("question_id = ? AND is_deleted = ?", question.ID, false).
			Order("order_index asc").Find(&options)
		for _, option := range options {
			view.Options = append(view.Options, OptionView{ID: option.ID, Text: option.OptionText})
		}
		views = append(views, view)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz fetched successfully!", fiber.Map{
		"quiz_id":        quiz.ID,
		"title":          quiz.Title,
		"passing_score":  quiz.PassingScore,
		"max_attempts":   quiz.MaxAttempts,
		"attempts_used":  attemptCount,
		"questions":      views,
	})
}

// SubmitQuizAttempt grades a submission. Choice questions are auto-graded all
// or nothing per question; any essay answer parks the attempt in GRADING and
// it does not count toward gating until an instructor grades it. A graded
// passing attempt feeds straight into the completion ledger.
func SubmitQuizAttempt(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	lessonID := c.Locals("lessonID").(int)
	submission := c.Locals("validatedQuizSubmission").(*validation.QuizSubmission)

	lesson, forbidden := gatedLesson(c, userID, lessonID)
	if lesson == nil {
		return forbidden
	}

	quiz, err := quizByLessonID(uint(lessonID))
	if err != nil || quiz == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "This lesson has no quiz!", nil)
	}

	canAttempt, err := progress.CanAttemptQuiz(database.Database.Db, userID, lesson)
	if err != nil {
		return progressErrorResponse(c, err)
	}
	if !canAttempt {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Finish the lesson content before attempting the quiz!", nil)
	}

	var attemptCount int64
	database.Database.Db.Model(&courseModels.QuizAttempt{}).
		Where("user_id = ? AND quiz_id = ?", userID, quiz.ID).Count(&attemptCount)
	if quiz.MaxAttempts > 0 && attemptCount >= int64(quiz.MaxAttempts) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Maximum quiz attempts reached!", nil)
	}

	var questions []courseModels.QuizQuestion
	if err := database.Database.Db.Where("quiz_id = ? AND is_deleted = ?", quiz.ID, false).Find(&questions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch quiz questions!", nil)
	}

	answers := map[uint]validation.QuizAnswer{}
	for _, answer := range submission.Answers {
		answers[answer.QuestionID] = answer
	}

	score := 0
	maxScore := 0
	hasEssay := false
	for _, question := range questions {
		maxScore += question.Points
		answer, answered := answers[question.ID]
		if !answered {
			continue
		}
		if question.QuestionType == "ESSAY" {
			if answer.EssayText != "" {
				hasEssay = true
			}
			continue
		}
		if choiceAnswerCorrect(question.ID, answer.SelectedOptionIDs) {
			score += question.Points
		}
	}

	percentage := 0.0
	if maxScore > 0 {
		percentage = float64(score) / float64(maxScore) * 100
	}

	threshold := quiz.PassingScore
	if lesson.MinimumPassingScore != nil {
		threshold = *lesson.MinimumPassingScore
	}

	now := time.Now()
	attempt := courseModels.QuizAttempt{
		UserID:        userID,
		QuizID:        quiz.ID,
		Status:        courseModels.AttemptCompleted,
		Score:         score,
		MaxScore:      maxScore,
		Percentage:    percentage,
		Passed:        percentage >= float64(threshold),
		AttemptNumber: int(attemptCount) + 1,
		SubmittedAt:   &now,
	}
	if hasEssay {
		attempt.Status = courseModels.AttemptGrading
		attempt.Passed = false
	}

	if err := database.Database.Db.Create(&attempt).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save quiz attempt!", nil)
	}

	if attempt.Passed {
		quizID := quiz.ID
		if _, err := progress.UpdateOnCompletion(database.Database.Db, userID, lesson.CourseID, lesson.ModuleID, lesson.ID, &quizID); err != nil {
			log.Printf("Ledger update after quiz pass failed for user %d lesson %d: %v", userID, lesson.ID, err)
		}
	}

	message := "Quiz submitted successfully!"
	if hasEssay {
		message = "Quiz submitted, essay answers await grading!"
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, message, fiber.Map{
		"attempt_id": attempt.ID,
		"status":     attempt.Status,
		"score":      attempt.Score,
		"max_score":  attempt.MaxScore,
		"percentage": attempt.Percentage,
		"passed":     attempt.Passed,
	})
}

// GetQuizAttempts lists the learner's attempts for a lesson's quiz, newest
// first
func GetQuizAttempts(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	lessonID := c.Locals("lessonID").(int)

	quiz, err := quizByLessonID(uint(lessonID))
	if err != nil || quiz == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "This lesson has no quiz!", nil)
	}

	var attempts []courseModels.QuizAttempt
	if err := database.Database.Db.Where("user_id = ? AND quiz_id = ?", userID, quiz.ID).
		Order("submitted_at desc").Find(&attempts).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch attempts!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempts fetched successfully!", fiber.Map{
		"quiz_id":  quiz.ID,
		"attempts": attempts,
	})
}

// choiceAnswerCorrect checks that the selected option set matches the correct
// option set exactly
func choiceAnswerCorrect(questionID uint, selected []uint) bool {
	var correct []courseModels.QuizOption
	if err := database.Database.Db.Where("question_id = ? AND is_correct = ? AND is_deleted = ?", questionID, true, false).Find(&correct).Error; err != nil {
		return false
	}
	if len(correct) == 0 || len(selected) != len(correct) {
		return false
	}
	correctSet := map[uint]bool{}
	for _, option := range correct {
		correctSet[option.ID] = true
	}
	for _, id := range selected {
		if !correctSet[id] {
			return false
		}
	}
	return true
}
