package services

import (
	"context"

	"idadmin/application/ports"
	"idadmin/domain/core/aggregates"
	"idadmin/domain/core/valueobjects"
	"idadmin/pkg/errors"
)

// UserValidator runs the read-only checks command handlers need before
// mutating a user. Each failure is a specific coded error carrying enough
// structured data for the transport layer to format a response.
type UserValidator struct {
	users ports.UserRepository
}

// NewUserValidator creates a user validator
func NewUserValidator(users ports.UserRepository) *UserValidator {
	return &UserValidator{users: users}
}

// MustExist loads the user or fails with a not-found error
func (v *UserValidator) MustExist(ctx context.Context, id string) (*aggregates.User, error) {
	user, err := v.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.NewNotFoundError("user").
			WithCode("USER_NOT_FOUND").WithDetail("user_id", id)
	}
	return user, nil
}

// MustBeActive loads the user and fails unless it is in the ACTIVE state
func (v *UserValidator) MustBeActive(ctx context.Context, id string) (*aggregates.User, error) {
	user, err := v.MustExist(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsActive() {
		return nil, errors.NewValidationError("user must be active").
			WithCode("USER_NOT_ACTIVE").
			WithDetail("user_id", id).
			WithDetail("status", string(user.Status()))
	}
	return user, nil
}

// EmailAvailable fails with a conflict when another user already holds the
// email. excludeID skips the user's own row on renames.
func (v *UserValidator) EmailAvailable(ctx context.Context, email valueobjects.Email, excludeID string) error {
	taken, err := v.users.ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return errors.NewConflictError("email is already in use").
			WithCode("EMAIL_TAKEN").WithDetail("field", "email")
	}
	return nil
}

// UsernameAvailable fails with a conflict when another user already holds the
// username
func (v *UserValidator) UsernameAvailable(ctx context.Context, username valueobjects.Username, excludeID string) error {
	if username.IsZero() {
		return nil
	}
	taken, err := v.users.ExistsByUsername(ctx, username, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return errors.NewConflictError("username is already in use").
			WithCode("USERNAME_TAKEN").WithDetail("field", "username")
	}
	return nil
}
