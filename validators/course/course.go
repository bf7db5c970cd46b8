package courseValidator

import (
	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

// CourseID validates the :id URL parameter
func CourseID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
		}
		c.Locals("courseID", id)
		return c.Next()
	}
}

// CourseModuleIDs validates the :course_id and :module_id URL parameters
func CourseModuleIDs() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := paramID(c, "course_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
		}
		moduleID, ok := paramID(c, "module_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid module ID!", nil)
		}
		c.Locals("courseID", courseID)
		c.Locals("moduleID", moduleID)
		return c.Next()
	}
}

// LessonIDs validates the :course_id and :lesson_id URL parameters
func LessonIDs() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := paramID(c, "course_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
		}
		lessonID, ok := paramID(c, "lesson_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid lesson ID!", nil)
		}
		c.Locals("courseID", courseID)
		c.Locals("lessonID", lessonID)
		return c.Next()
	}
}

// Pagination validates optional page/limit body fields
func Pagination() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Page  *int `json:"page"`
			Limit *int `json:"limit"`
		})
		// Pagination is optional; a missing or invalid body falls back to defaults
		if err := c.BodyParser(reqData); err == nil {
			if reqData.Page != nil && *reqData.Page <= 0 {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Page must be positive!", nil)
			}
			if reqData.Limit != nil && (*reqData.Limit <= 0 || *reqData.Limit > 100) {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Limit must be between 1 and 100!", nil)
			}
			c.Locals("validatedPagination", reqData)
		}
		return c.Next()
	}
}
