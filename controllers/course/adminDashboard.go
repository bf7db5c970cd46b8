package controllers

import (
	"log"
	"time"

	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/progress"
	"lms/utils"
	validation "lms/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetCourseEnrollmentsAdmin lists enrollments of a course for the admin panel
func GetCourseEnrollmentsAdmin(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("course_id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}

	var enrollments []courseModels.Enrollment
	if err := database.Database.Db.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("created_at desc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", enrollments)
}

// GetStudentProgressAdmin shows a student's per-module ledger entries for a
// course
func GetStudentProgressAdmin(c *fiber.Ctx) error {
	courseID, err1 := c.ParamsInt("course_id")
	studentID, err2 := c.ParamsInt("user_id")
	if err1 != nil || err2 != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course or user ID!", nil)
	}

	var student models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", studentID, false).First(&student).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Student not found!", nil)
	}

	var modules []courseModels.Module
	if err := database.Database.Db.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("order_index asc").Find(&modules).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch modules!", nil)
	}

	type ModuleState struct {
		ModuleID         uint    `json:"module_id"`
		Title            string  `json:"title"`
		Progress         float64 `json:"progress"`
		CompletedLessons []uint  `json:"completed_lessons"`
		CompletedQuizzes []uint  `json:"completed_quizzes"`
	}

	states := make([]ModuleState, 0, len(modules))
	for _, module := range modules {
		state := ModuleState{
			ModuleID:         module.ID,
			Title:            module.Title,
			CompletedLessons: []uint{},
			CompletedQuizzes: []uint{},
		}
		entry, err := progress.LedgerEntry(database.Database.Db, uint(studentID), module.ID)
		if err != nil {
			return progressErrorResponse(c, err)
		}
		if entry != nil {
			state.Progress = entry.Progress
			state.CompletedLessons = entry.LessonIDs()
			state.CompletedQuizzes = entry.QuizIDs()
		}
		states = append(states, state)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Student progress fetched successfully!", fiber.Map{
		"student_id": studentID,
		"course_id":  courseID,
		"modules":    states,
	})
}

// GetCertificateRequestsAdmin lists certificate requests, optionally filtered
// by status
func GetCertificateRequestsAdmin(c *fiber.Ctx) error {
	status := c.Query("status", "PENDING")

	query := database.Database.Db.Where("is_deleted = ?", false)
	if status != "ALL" {
		query = query.Where("status = ?", status)
	}

	var requests []courseModels.CertificateRequest
	if err := query.Order("requested_at asc").Find(&requests).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificate requests!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate requests fetched successfully!", requests)
}

// ApproveCertificateRequest approves a pending request and issues the
// certificate. The learner is mailed right away; the nightly scheduler retries
// anyone the mail missed.
func ApproveCertificateRequest(c *fiber.Ctx) error {
	adminID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	requestID := c.Locals("requestID").(int)

	var request courseModels.CertificateRequest
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", requestID, false).First(&request).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate request not found!", nil)
	}
	if request.Status != "PENDING" {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "This request was already processed!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ?", request.CourseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	now := time.Now()
	certificate := courseModels.Certificate{
		UserID:            request.UserID,
		CourseID:          request.CourseID,
		CertificateNumber: utils.GenerateCertificateNumber(request.CourseID),
		IssuedAt:          now,
	}

	err := database.Database.Db.Transaction(func(tx *gorm.DB) error {
		request.Status = "APPROVED"
		request.ApprovedAt = &now
		request.ApprovedBy = &adminID
		if err := tx.Save(&request).Error; err != nil {
			return err
		}
		return tx.Create(&certificate).Error
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to approve certificate!", nil)
	}

	var student models.User
	if err := database.Database.Db.Where("id = ?", request.UserID).First(&student).Error; err == nil {
		go func() {
			utils.SendCertificateEmail(student.Email, student.Name, course.Title, certificate.CertificateNumber)
			if err := database.Database.Db.Model(&courseModels.Certificate{}).
				Where("id = ?", certificate.ID).Update("notified_at", time.Now()).Error; err != nil {
				log.Printf("Failed to mark certificate %d notified: %v", certificate.ID, err)
			}
		}()
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate approved successfully!", certificate)
}

// RejectCertificateRequest rejects a pending request with a reason
func RejectCertificateRequest(c *fiber.Ctx) error {
	requestID := c.Locals("requestID").(int)
	body := c.Locals("validatedReject").(*validation.RejectBody)

	var request courseModels.CertificateRequest
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", requestID, false).First(&request).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate request not found!", nil)
	}
	if request.Status != "PENDING" {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "This request was already processed!", nil)
	}

	request.Status = "REJECTED"
	request.RejectionReason = body.Reason
	if err := database.Database.Db.Save(&request).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to reject certificate request!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate request rejected!", request)
}
