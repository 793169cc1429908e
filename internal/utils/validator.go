package utils

import (
	"regexp"
	"strings"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-z0-9_\-]{3,30}$`)
)

// ValidateEmail validates an email address
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidateUsername validates a normalized (lowercased) username
func ValidateUsername(username string) bool {
	return usernameRegex.MatchString(username)
}

// ValidatePassword validates a password: minimum 8 characters
func ValidatePassword(password string) bool {
	return len(password) >= 8
}

// NormalizeIdentifier trims and lowercases a username or email for storage
// and lookup.
func NormalizeIdentifier(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsBlank reports whether s is empty after trimming
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
