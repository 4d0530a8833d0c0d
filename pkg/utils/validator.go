package utils

import (
	"fmt"
	"regexp"
)

var (
	emailRegex  = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	mobileRegex = regexp.MustCompile(`^[6-9]\d{9}$`)
	ctrlRegex   = regexp.MustCompile(`[\x00-\x1f\x7f]`)
)

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

// ValidateMobile validates a 10-digit Indian mobile number
func ValidateMobile(mobile string) error {
	if !mobileRegex.MatchString(mobile) {
		return fmt.Errorf("invalid mobile number: %s", mobile)
	}
	return nil
}

// ValidateAmount validates a fee or installment amount in whole currency
// units
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive: %d", amount)
	}
	return nil
}

// SanitizeString removes control characters from user input
func SanitizeString(s string) string {
	return ctrlRegex.ReplaceAllString(s, "")
}
