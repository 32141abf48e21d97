package valueobjects

import (
	"strings"
	"unicode/utf8"

	"idadmin/pkg/errors"
)

// GroupName is the globally unique display name of a user group
type GroupName struct {
	value string
}

// NewGroupName creates a validated GroupName value object
func NewGroupName(raw string) (GroupName, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return GroupName{}, errors.NewValidationError("group name is required").
			WithCode("GROUP_NAME_REQUIRED").WithDetail("field", "name")
	}
	if utf8.RuneCountInString(trimmed) > 100 {
		return GroupName{}, errors.NewValidationError("group name must be at most 100 characters").
			WithCode("GROUP_NAME_TOO_LONG").WithDetail("field", "name")
	}
	return GroupName{value: trimmed}, nil
}

// String returns the group name
func (n GroupName) String() string {
	return n.value
}

// IsZero reports whether the name is unset
func (n GroupName) IsZero() bool {
	return n.value == ""
}
