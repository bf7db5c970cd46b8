package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateCertificateNumber builds a unique, human-readable certificate number
func GenerateCertificateNumber(courseID uint) string {
	suffix := strings.ToUpper(strings.Split(uuid.NewString(), "-")[0])
	return fmt.Sprintf("CERT-%d-%s-%s", courseID, time.Now().Format("200601"), suffix)
}

// ApplyCoupon returns the price after a percent discount, never below zero
func ApplyCoupon(price, discountPercent float64) float64 {
	if discountPercent <= 0 {
		return price
	}
	if discountPercent >= 100 {
		return 0
	}
	discounted := price * (1 - discountPercent/100)
	if discounted < 0 {
		return 0
	}
	return discounted
}
