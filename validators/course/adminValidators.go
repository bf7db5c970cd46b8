package courseValidator

import (
	"strings"

	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

// CourseBody is the payload for creating or updating a course
type CourseBody struct {
	Title        string  `json:"title" validate:"required,min=3,max=100"`
	Description  string  `json:"description" validate:"max=2000"`
	Author       string  `json:"author" validate:"max=100"`
	Duration     int64   `json:"duration" validate:"gte=0"`
	Price        float64 `json:"price" validate:"gte=0"`
	ThumbnailURL string  `json:"thumbnail_url" validate:"max=500"`
}

// ModuleBody is the payload for creating or updating a module
type ModuleBody struct {
	Title       string `json:"title" validate:"required,min=3,max=100"`
	Description string `json:"description" validate:"max=2000"`
	OrderIndex  *int   `json:"order_index" validate:"omitempty,gte=0"`
}

// PrerequisiteEntry declares one prerequisite for a module
type PrerequisiteEntry struct {
	ModuleID           uint     `json:"module_id" validate:"required"`
	RequiredCompletion *float64 `json:"required_completion" validate:"omitempty,gte=0,lte=100"`
}

// PrerequisitesBody replaces a module's prerequisite list
type PrerequisitesBody struct {
	Prerequisites []PrerequisiteEntry `json:"prerequisites" validate:"dive"`
}

// LessonBody is the payload for creating or updating a lesson
type LessonBody struct {
	Title       string `json:"title" validate:"required,min=3,max=150"`
	Description string `json:"description" validate:"max=5000"`
	OrderIndex  *int   `json:"order_index" validate:"omitempty,gte=0"`

	RequireVideoWatch       bool `json:"require_video_watch"`
	MinimumTimeSpentSeconds int  `json:"minimum_time_spent_seconds" validate:"gte=0"`

	QuizRequired               bool   `json:"quiz_required"`
	MinimumPassingScore        *int   `json:"minimum_passing_score" validate:"omitempty,gte=0,lte=100"`
	QuizBlocksProgress         bool   `json:"quiz_blocks_progress"`
	ShowQuizAt                 string `json:"show_quiz_at" validate:"omitempty,oneof=BEFORE AFTER ANY"`
	MinimumTimeRequiredSeconds int    `json:"minimum_time_required_seconds" validate:"gte=0"`
}

// VideoBody attaches or replaces a lesson video
type VideoBody struct {
	StreamUID string `json:"stream_uid" validate:"required,max=64"`
	VideoURL  string `json:"video_url" validate:"max=500"`
	Duration  int    `json:"duration" validate:"gte=0"`
}

// QuizBody creates or updates a lesson quiz
type QuizBody struct {
	Title        string `json:"title" validate:"required,min=3,max=150"`
	PassingScore int    `json:"passing_score" validate:"gte=0,lte=100"`
	MaxAttempts  int    `json:"max_attempts" validate:"gte=0"`
}

// QuestionOption is one option of an MCQ question
type QuestionOption struct {
	OptionText string `json:"option_text" validate:"required,max=500"`
	IsCorrect  bool   `json:"is_correct"`
}

// QuestionBody adds a question to a quiz
type QuestionBody struct {
	QuestionText string           `json:"question_text" validate:"required,max=5000"`
	QuestionType string           `json:"question_type" validate:"omitempty,oneof=MCQ ESSAY"`
	Points       int              `json:"points" validate:"gte=1"`
	Options      []QuestionOption `json:"options" validate:"dive"`
}

// RejectBody carries the reason for rejecting a certificate request
type RejectBody struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

// bodyValidator builds a middleware that parses a body into dst and validates
// it, storing the result under key. dst must be a factory so each request gets
// a fresh struct.
func bodyValidator(key string, fresh func() interface{}, params ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, p := range params {
			id, ok := paramID(c, p)
			if !ok {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid "+strings.ReplaceAll(p, "_", " ")+"!", nil)
			}
			switch p {
			case "id":
				c.Locals("courseID", id)
			case "course_id":
				c.Locals("courseID", id)
			case "module_id":
				c.Locals("moduleID", id)
			case "lesson_id":
				c.Locals("lessonID", id)
			case "asset_id":
				c.Locals("assetID", id)
			case "quiz_id":
				c.Locals("quizID", id)
			case "request_id":
				c.Locals("requestID", id)
			}
		}

		dst := fresh()
		if err := c.BodyParser(dst); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if err := validate.Struct(dst); err != nil {
			errors := make(map[string]string)
			for _, fe := range validationErrors(err) {
				errors[strings.ToLower(fe.Field())] = "Failed validation: " + fe.Tag()
			}
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals(key, dst)
		return c.Next()
	}
}

// CreateCourseAdmin validates course creation
func CreateCourseAdmin() fiber.Handler {
	return bodyValidator("validatedCourse", func() interface{} { return new(CourseBody) })
}

// UpdateCourseAdmin validates course update
func UpdateCourseAdmin() fiber.Handler {
	return bodyValidator("validatedCourse", func() interface{} { return new(CourseBody) }, "id")
}

// CreateModule validates module creation
func CreateModule() fiber.Handler {
	return bodyValidator("validatedModule", func() interface{} { return new(ModuleBody) }, "id")
}

// UpdateModule validates module update
func UpdateModule() fiber.Handler {
	return bodyValidator("validatedModule", func() interface{} { return new(ModuleBody) }, "course_id", "module_id")
}

// SetPrerequisites validates a prerequisite list replacement
func SetPrerequisites() fiber.Handler {
	return bodyValidator("validatedPrerequisites", func() interface{} { return new(PrerequisitesBody) }, "course_id", "module_id")
}

// CreateLesson validates lesson creation
func CreateLesson() fiber.Handler {
	return bodyValidator("validatedLesson", func() interface{} { return new(LessonBody) }, "course_id", "module_id")
}

// UpdateLesson validates lesson update
func UpdateLesson() fiber.Handler {
	return bodyValidator("validatedLesson", func() interface{} { return new(LessonBody) }, "course_id", "lesson_id")
}

// AttachVideo validates a video attach/replace request
func AttachVideo() fiber.Handler {
	return bodyValidator("validatedVideo", func() interface{} { return new(VideoBody) }, "course_id", "lesson_id")
}

// CreateQuiz validates quiz creation for a lesson
func CreateQuiz() fiber.Handler {
	return bodyValidator("validatedQuiz", func() interface{} { return new(QuizBody) }, "course_id", "lesson_id")
}

// AddQuestion validates adding a question to a quiz
func AddQuestion() fiber.Handler {
	return bodyValidator("validatedQuestion", func() interface{} { return new(QuestionBody) }, "quiz_id")
}

// ApproveCertificate validates the certificate approve request
func ApproveCertificate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID, ok := paramID(c, "request_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request ID!", nil)
		}
		c.Locals("requestID", requestID)
		return c.Next()
	}
}

// RejectCertificate validates the certificate reject request
func RejectCertificate() fiber.Handler {
	return bodyValidator("validatedReject", func() interface{} { return new(RejectBody) }, "request_id")
}
