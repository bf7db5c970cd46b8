package courseValidator

import (
	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

// QuizAnswer is one answered question in a quiz submission
type QuizAnswer struct {
	QuestionID        uint   `json:"question_id" validate:"required"`
	SelectedOptionIDs []uint `json:"selected_option_ids"`
	EssayText         string `json:"essay_text" validate:"max=20000"`
}

// QuizSubmission is the payload of a quiz attempt submission
type QuizSubmission struct {
	Answers []QuizAnswer `json:"answers" validate:"required,min=1,dive"`
}

// SubmitQuiz validates a quiz submission request
func SubmitQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := paramID(c, "course_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
		}
		lessonID, ok := paramID(c, "lesson_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid lesson ID!", nil)
		}

		reqData := new(QuizSubmission)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if err := validate.Struct(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "At least one answer is required!", nil)
		}

		c.Locals("courseID", courseID)
		c.Locals("lessonID", lessonID)
		c.Locals("validatedQuizSubmission", reqData)
		return c.Next()
	}
}
