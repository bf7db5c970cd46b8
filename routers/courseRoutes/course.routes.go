package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up all learner-facing course routes
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/course")

	// Course listing and details
	courseGroup.Get("/list", middleware.JWTMiddleware, validators.Pagination(), controllers.GetAllCourses)
	courseGroup.Get("/:id", middleware.JWTMiddleware, validators.CourseID(), controllers.GetCourseDetails)

	// Enrollment
	courseGroup.Post("/:id/enroll", middleware.JWTMiddleware, validators.EnrollCourse(), controllers.EnrollInCourse)

	// Module content
	courseGroup.Get("/:course_id/module/:module_id/lessons", middleware.JWTMiddleware, validators.CourseModuleIDs(), controllers.GetModuleLessons)
	courseGroup.Get("/:course_id/lesson/:lesson_id", middleware.JWTMiddleware, validators.LessonIDs(), controllers.GetLessonDetail)

	// Activity recording
	courseGroup.Post("/:course_id/lesson/:lesson_id/time", middleware.JWTMiddleware, validators.RecordTime(), controllers.RecordLessonTime)
	courseGroup.Post("/:course_id/lesson/:lesson_id/video", middleware.JWTMiddleware, validators.RecordVideoTick(), controllers.RecordVideoProgress)
	courseGroup.Post("/:course_id/lesson/:lesson_id/asset/:asset_id/download", middleware.JWTMiddleware, validators.AssetDownload(), controllers.DownloadLessonAsset)

	// Lesson completion
	courseGroup.Post("/:course_id/lesson/:lesson_id/complete", middleware.JWTMiddleware, validators.LessonIDs(), controllers.MarkLessonComplete)

	// Quizzes
	courseGroup.Get("/:course_id/lesson/:lesson_id/quiz", middleware.JWTMiddleware, validators.LessonIDs(), controllers.GetLessonQuiz)
	courseGroup.Post("/:course_id/lesson/:lesson_id/quiz/submit", middleware.JWTMiddleware, validators.SubmitQuiz(), controllers.SubmitQuizAttempt)
	courseGroup.Get("/:course_id/lesson/:lesson_id/quiz/attempts", middleware.JWTMiddleware, validators.LessonIDs(), controllers.GetQuizAttempts)

	// Progress tracking
	courseGroup.Get("/:course_id/module/:module_id/progress", middleware.JWTMiddleware, validators.CourseModuleIDs(), controllers.GetModuleProgress)
	courseGroup.Get("/:id/progress", middleware.JWTMiddleware, validators.CourseID(), controllers.GetCourseProgress)

	// Certificate request
	courseGroup.Post("/:id/certificate/request", middleware.JWTMiddleware, validators.CourseID(), controllers.RequestCertificate)

	// User enrollments and certificates
	userGroup := app.Group("/user")
	userGroup.Get("/enrollments", middleware.JWTMiddleware, controllers.GetEnrollments)
	userGroup.Get("/certificates", middleware.JWTMiddleware, controllers.GetUserCertificates)
	userGroup.Get("/certificate/requests", middleware.JWTMiddleware, controllers.GetUserCertificateRequests)
}
