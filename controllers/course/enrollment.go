package controllers

import (
	"log"
	"time"

	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/utils"
	courseValidator "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// EnrollInCourse enrolls the user in a course, optionally limited to a subset
// of modules and optionally discounted by a coupon. The payment gateway charge
// happens before this call; the reference is recorded here.
func EnrollInCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)
	reqData, _ := c.Locals("validatedEnroll").(*courseValidator.EnrollBody)
	if reqData == nil {
		reqData = &courseValidator.EnrollBody{}
	}

	// Check if course exists and is published
	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found or not published!", nil)
	}

	// Check if user is already enrolled
	var existingEnrollment courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&existingEnrollment).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "User already enrolled in this course!", nil)
	}

	// Validate requested modules for a partial enrollment
	enrollType := "FULL"
	if len(reqData.ModuleIDs) > 0 {
		enrollType = "PARTIAL"
		var count int64
		database.Database.Db.Model(&courseModels.Module{}).
			Where("id IN ? AND course_id = ? AND is_deleted = ?", reqData.ModuleIDs, courseID, false).
			Count(&count)
		if count != int64(len(reqData.ModuleIDs)) {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "One or more modules do not belong to this course!", nil)
		}
	}

	// Resolve coupon
	amount := course.Price
	var coupon *courseModels.Coupon
	if reqData.CouponCode != "" {
		var found courseModels.Coupon
		err := database.Database.Db.Where("code = ? AND is_active = ? AND is_deleted = ?", reqData.CouponCode, true, false).First(&found).Error
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid coupon code!", nil)
		}
		if found.ExpiresAt != nil && found.ExpiresAt.Before(time.Now()) {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Coupon has expired!", nil)
		}
		if found.MaxUses > 0 && found.UsedCount >= found.MaxUses {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Coupon usage limit reached!", nil)
		}
		amount = utils.ApplyCoupon(course.Price, found.DiscountPercent)
		coupon = &found
	}

	enrollment := courseModels.Enrollment{
		UserID:     userID,
		CourseID:   uint(courseID),
		Status:     "ENROLLED",
		Type:       enrollType,
		AmountPaid: amount,
	}

	// Save enrollment, module list, payment and coupon bump together
	tx := database.Database.Db.Begin()
	if err := tx.Create(&enrollment).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll in course!", nil)
	}
	for _, moduleID := range reqData.ModuleIDs {
		em := courseModels.EnrollmentModule{EnrollmentID: enrollment.ID, ModuleID: moduleID}
		if err := tx.Create(&em).Error; err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll in course!", nil)
		}
	}
	if amount > 0 || reqData.PaymentReference != "" {
		payment := courseModels.Payment{
			UserID:       userID,
			CourseID:     uint(courseID),
			EnrollmentID: enrollment.ID,
			Amount:       amount,
			Reference:    reqData.PaymentReference,
		}
		if coupon != nil {
			payment.CouponID = &coupon.ID
		}
		if err := tx.Create(&payment).Error; err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record payment!", nil)
		}
	}
	if coupon != nil {
		if err := tx.Model(coupon).Update("used_count", coupon.UsedCount+1).Error; err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to apply coupon!", nil)
		}
	}
	tx.Commit()

	go utils.SendEnrollmentEmail(user.Email, user.Name, course.Title)
	log.Printf("User %d enrolled in course %d (%s, paid %.2f)", userID, courseID, enrollType, amount)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrolled in course successfully!", enrollment)
}

// GetEnrollments lists the user's enrollments
func GetEnrollments(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	var enrollments []courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND is_deleted = ?", userID, false).
		Preload("Course").Order("created_at desc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": enrollments,
	})
}

// enrollmentForModule looks up the user's enrollment covering a module. A FULL
// enrollment covers every module; a PARTIAL one only its listed modules.
func enrollmentForModule(userID, courseID, moduleID uint) (*courseModels.Enrollment, bool) {
	var enrollment courseModels.Enrollment
	err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error
	if err != nil {
		return nil, false
	}
	if enrollment.Type == "FULL" {
		return &enrollment, true
	}
	var count int64
	database.Database.Db.Model(&courseModels.EnrollmentModule{}).
		Where("enrollment_id = ? AND module_id = ? AND is_deleted = ?", enrollment.ID, moduleID, false).
		Count(&count)
	return &enrollment, count > 0
}
