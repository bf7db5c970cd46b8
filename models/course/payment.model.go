package course

import (
	"time"

	"gorm.io/gorm"
)

// Coupon represents a discount code applicable at enrollment
type Coupon struct {
	gorm.Model
	Code            string     `json:"code" gorm:"unique;not null"`
	DiscountPercent float64    `json:"discount_percent" gorm:"default:0"` // 0-100
	MaxUses         int        `json:"max_uses" gorm:"default:0"`         // 0 = unlimited
	UsedCount       int        `json:"used_count" gorm:"default:0"`
	ExpiresAt       *time.Time `json:"expires_at"`
	IsActive        bool       `json:"is_active" gorm:"default:true"`
	IsDeleted       bool       `gorm:"default:false"`
}

// Payment records the amount charged for an enrollment. Gateway integration is
// external; this row is written once the gateway confirms the charge.
type Payment struct {
	gorm.Model
	UserID       uint    `json:"user_id" gorm:"index;not null"`
	CourseID     uint    `json:"course_id" gorm:"index;not null"`
	EnrollmentID uint    `json:"enrollment_id" gorm:"index;not null"`
	Amount       float64 `json:"amount" gorm:"default:0"`
	CouponID     *uint   `json:"coupon_id"`
	Reference    string  `json:"reference"` // gateway transaction reference
	Status       string  `json:"status" gorm:"default:'SUCCESS'"` // SUCCESS, REFUNDED
	IsDeleted    bool    `gorm:"default:false"`
}
