package utils

import (
	"regexp"
	"strings"
)

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex = regexp.MustCompile(`^[\d\s\-\+\(\)]+$`)
	digitRegex = regexp.MustCompile(`\D`)
)

func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidatePhone accepts common formats but requires at least 10 digits.
func ValidatePhone(phone string) bool {
	if !phoneRegex.MatchString(phone) {
		return false
	}
	return len(digitRegex.ReplaceAllString(phone, "")) >= 10
}

// ValidateQRGenerate returns one message per failed field, empty when valid.
func ValidateQRGenerate(name, email, address, phone string) []string {
	var errs []string

	if len(strings.TrimSpace(name)) < 2 {
		errs = append(errs, "Name must be at least 2 characters")
	}
	if email == "" || !ValidateEmail(email) {
		errs = append(errs, "Valid email is required")
	}
	if len(strings.TrimSpace(address)) < 5 {
		errs = append(errs, "Address must be at least 5 characters")
	}
	if phone == "" || !ValidatePhone(phone) {
		errs = append(errs, "Valid phone number is required")
	}

	return errs
}
