package valueobjects

import (
	"regexp"
	"strings"

	"idadmin/pkg/errors"
)

// Username is an optional, unique handle chosen by the user
type Username struct {
	value string
}

var usernamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._\-]{2,31}$`)

// NewUsername creates a validated Username value object
func NewUsername(raw string) (Username, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return Username{}, errors.NewValidationError("username is required").
			WithCode("USERNAME_REQUIRED").WithDetail("field", "username")
	}
	if !usernamePattern.MatchString(normalized) {
		return Username{}, errors.NewValidationError("username must be 3-32 characters, lower-case letters, digits, '.', '_' or '-'").
			WithCode("USERNAME_INVALID").WithDetail("field", "username")
	}
	return Username{value: normalized}, nil
}

// String returns the canonical form
func (u Username) String() string {
	return u.value
}

// IsZero reports whether the username is unset
func (u Username) IsZero() bool {
	return u.value == ""
}
