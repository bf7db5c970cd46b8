package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminCourseRoutes sets up all admin course management routes
func SetupAdminCourseRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin/course", middleware.JWTMiddleware, middleware.RequireRole("ADMIN"))

	// Course CRUD
	adminGroup.Post("/create", validators.CreateCourseAdmin(), controllers.CreateCourse)
	adminGroup.Put("/:id", validators.UpdateCourseAdmin(), controllers.UpdateCourse)
	adminGroup.Delete("/:id", controllers.DeleteCourse)
	adminGroup.Post("/:id/publish", controllers.PublishCourse)

	// Module management
	adminGroup.Post("/:id/module", validators.CreateModule(), controllers.CreateCourseModule)
	adminGroup.Put("/:course_id/module/:module_id", validators.UpdateModule(), controllers.UpdateCourseModule)
	adminGroup.Delete("/:course_id/module/:module_id", controllers.DeleteCourseModule)
	adminGroup.Put("/:course_id/module/:module_id/prerequisites", validators.SetPrerequisites(), controllers.SetModulePrerequisites)

	// Lesson management
	adminGroup.Post("/:course_id/module/:module_id/lesson", validators.CreateLesson(), controllers.CreateModuleLesson)
	adminGroup.Put("/:course_id/lesson/:lesson_id", validators.UpdateLesson(), controllers.UpdateModuleLesson)
	adminGroup.Delete("/:course_id/lesson/:lesson_id", controllers.DeleteModuleLesson)
	adminGroup.Post("/:course_id/lesson/:lesson_id/publish", controllers.PublishLesson)

	// Video management
	adminGroup.Post("/video/upload-url", controllers.CreateVideoUploadURL)
	adminGroup.Put("/:course_id/lesson/:lesson_id/video", validators.AttachVideo(), controllers.AttachLessonVideo)

	// Asset management
	adminGroup.Post("/:course_id/lesson/:lesson_id/asset", controllers.UploadLessonAsset)
	adminGroup.Delete("/:course_id/lesson/:lesson_id/asset/:asset_id", controllers.DeleteLessonAsset)

	// Quiz management
	adminGroup.Post("/:course_id/lesson/:lesson_id/quiz", validators.CreateQuiz(), controllers.CreateLessonQuiz)

	quizGroup := app.Group("/admin/quiz", middleware.JWTMiddleware, middleware.RequireRole("ADMIN"))
	quizGroup.Post("/:quiz_id/question", validators.AddQuestion(), controllers.AddQuizQuestion)

	// Enrollment and progress tracking
	adminGroup.Get("/:course_id/enrollments", controllers.GetCourseEnrollmentsAdmin)
	adminGroup.Get("/:course_id/student/:user_id/progress", controllers.GetStudentProgressAdmin)

	// Certificate management
	certGroup := app.Group("/admin/certificate", middleware.JWTMiddleware, middleware.RequireRole("ADMIN"))
	certGroup.Get("/requests", controllers.GetCertificateRequestsAdmin)
	certGroup.Post("/:request_id/approve", validators.ApproveCertificate(), controllers.ApproveCertificateRequest)
	certGroup.Post("/:request_id/reject", validators.RejectCertificate(), controllers.RejectCertificateRequest)
}
