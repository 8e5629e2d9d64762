package services

import (
	"regexp"
	"strings"

	"tts-guard-backend/db/models"
)

var (
	emailRegex  = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)
	uppercase   = regexp.MustCompile(`[A-Z]`)
	lowercase   = regexp.MustCompile(`[a-z]`)
	digit       = regexp.MustCompile(`[0-9]`)
	specialChar = regexp.MustCompile(`[!@#\$%\^&\*\(\)_\+\-=\[\]\{\};':"\\|,.<>\/?]+`)
)

func ValidRole(role models.Role) bool {
	switch role {
	case models.AdminRole, models.OperationsRole, models.TechnicianRole, models.FinanceRole:
		return true
	}
	return false
}

// ValidateUser returns the first problem with a new account, or "".
func ValidateUser(req CreateUserRequest) string {
	if strings.TrimSpace(req.FullName) == "" {
		return "full name is required"
	}
	if !ValidateEmailFormat(req.Email) {
		return "invalid email format"
	}
	if !ValidRole(req.Role) {
		return "invalid role"
	}
	return ValidatePassword(req.Password)
}

func ValidatePassword(password string) string {
	if len(password) < 8 {
		return "password must be at least 8 characters long"
	}
	if !uppercase.MatchString(password) {
		return "password must contain at least one uppercase letter"
	}
	if !lowercase.MatchString(password) {
		return "password must contain at least one lowercase letter"
	}
	if !digit.MatchString(password) {
		return "password must contain at least one digit"
	}
	if !specialChar.MatchString(password) {
		return "password must contain at least one special character"
	}
	return ""
}

func ValidateEmailFormat(email string) bool {
	return emailRegex.MatchString(strings.ToLower(strings.TrimSpace(email)))
}
