package valueobjects

import (
	"regexp"
	"strings"

	"idadmin/pkg/errors"
)

// Email is a validated, case-normalized email address.
// Uniqueness is case-insensitive, so the canonical form is lower case.
type Email struct {
	value string
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// NewEmail creates a validated Email value object
func NewEmail(raw string) (Email, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return Email{}, errors.NewValidationError("email is required").
			WithCode("EMAIL_REQUIRED").WithDetail("field", "email")
	}
	if len(normalized) > 254 || !emailPattern.MatchString(normalized) {
		return Email{}, errors.NewValidationError("email is not a valid address").
			WithCode("EMAIL_INVALID").WithDetail("field", "email")
	}
	return Email{value: normalized}, nil
}

// String returns the canonical form
func (e Email) String() string {
	return e.value
}

// IsZero reports whether the email is unset
func (e Email) IsZero() bool {
	return e.value == ""
}

// Equals compares two emails in canonical form
func (e Email) Equals(other Email) bool {
	return e.value == other.value
}
