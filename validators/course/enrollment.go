package courseValidator

import (
	"strings"

	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

// EnrollBody is the payload of an enrollment request. ModuleIDs limits a
// PARTIAL enrollment to the listed modules; empty means FULL.
type EnrollBody struct {
	CouponCode       string `json:"coupon_code"`
	ModuleIDs        []uint `json:"module_ids"`
	PaymentReference string `json:"payment_reference"`
}

// EnrollCourse validates an enrollment request
func EnrollCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := paramID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
		}

		reqData := new(EnrollBody)
		// Body is optional: a bare enroll request means FULL, no coupon
		if err := c.BodyParser(reqData); err != nil && len(c.Body()) > 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.CouponCode = strings.ToUpper(strings.TrimSpace(reqData.CouponCode))

		for _, id := range reqData.ModuleIDs {
			if id == 0 {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid module ID in list!", nil)
			}
		}

		c.Locals("courseID", courseID)
		c.Locals("validatedEnroll", reqData)
		return c.Next()
	}
}
