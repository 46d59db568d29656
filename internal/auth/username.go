// ABOUTME: Username validation for new accounts
// ABOUTME: Usernames start with a letter and use only letters, digits, and underscores

package auth

import "regexp"

// Username validation regex: alphanumeric + underscores, 3-32 characters
var usernameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]{2,31}$`)

// ValidateUsername checks if username meets requirements.
// Returns an error message or empty string if valid.
func ValidateUsername(username string) string {
	if len(username) < 3 {
		return "Username must be at least 3 characters"
	}
	if len(username) > 32 {
		return "Username must be at most 32 characters"
	}
	if !usernameRegex.MatchString(username) {
		return "Username must start with a letter and contain only letters, numbers, and underscores"
	}
	return ""
}
