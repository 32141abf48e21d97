package aggregates

import (
	"time"

	"github.com/google/uuid"

	"idadmin/domain/core/valueobjects"
	"idadmin/domain/events"
	"idadmin/pkg/errors"
)

// SignInMethod identifies how the user authenticates
type SignInMethod string

const (
	SignInPassword SignInMethod = "password"
	SignInGoogle   SignInMethod = "google"
	SignInApple    SignInMethod = "apple"
)

// UserStatus is the lifecycle state of a user.
// ACTIVE and DISABLED are reversible into one another; DELETED is terminal.
type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusDisabled UserStatus = "DISABLED"
	UserStatusDeleted  UserStatus = "DELETED"
)

// ValidSignInMethod reports whether m is a known sign-in method
func ValidSignInMethod(m SignInMethod) bool {
	switch m {
	case SignInPassword, SignInGoogle, SignInApple:
		return true
	}
	return false
}

// ValidUserStatus reports whether s is a known status
func ValidUserStatus(s UserStatus) bool {
	switch s {
	case UserStatusActive, UserStatusDisabled, UserStatusDeleted:
		return true
	}
	return false
}

// User is the aggregate root for an account. The external identity provider
// owns the credentials; this aggregate references it by ExternalID.
type User struct {
	Base

	email        valueobjects.Email
	username     valueobjects.Username
	displayName  string
	signInMethod SignInMethod
	status       UserStatus
	externalID   string
}

// NewUser constructs a new active user and records the created event.
// createdBy is empty when the user registers themselves.
func NewUser(email valueobjects.Email, username valueobjects.Username, displayName string, method SignInMethod, externalID, createdBy string) (*User, error) {
	if email.IsZero() {
		return nil, errors.NewValidationError("email is required").WithCode("EMAIL_REQUIRED")
	}
	if !ValidSignInMethod(method) {
		return nil, errors.NewValidationError("unknown sign-in method").
			WithCode("SIGNIN_METHOD_INVALID").WithDetail("method", string(method))
	}
	if externalID == "" {
		return nil, errors.NewValidationError("external identity reference is required").
			WithCode("EXTERNAL_ID_REQUIRED")
	}

	u := &User{
		Base:         newBase(uuid.New().String(), UserAggregateName, createdBy),
		email:        email,
		username:     username,
		displayName:  displayName,
		signInMethod: method,
		status:       UserStatusActive,
		externalID:   externalID,
	}
	u.recordEvent(events.UserCreated, map[string]interface{}{
		"email":          u.email.String(),
		"sign_in_method": string(method),
	})
	return u, nil
}

// RehydrateUser reconstructs a user from persisted state without recording
// events. Value objects are expected to have been re-validated by the caller.
func RehydrateUser(
	id string,
	version int,
	email valueobjects.Email,
	username valueobjects.Username,
	displayName string,
	method SignInMethod,
	status UserStatus,
	externalID string,
	createdAt time.Time,
	createdBy string,
	lastModifiedAt time.Time,
	lastModifiedBy string,
) *User {
	return &User{
		Base:         rehydrateBase(id, UserAggregateName, version, createdAt, createdBy, lastModifiedAt, lastModifiedBy),
		email:        email,
		username:     username,
		displayName:  displayName,
		signInMethod: method,
		status:       status,
		externalID:   externalID,
	}
}

// Email returns the unique, case-normalized email
func (u *User) Email() valueobjects.Email { return u.email }

// Username returns the optional unique handle, zero when unset
func (u *User) Username() valueobjects.Username { return u.username }

// DisplayName returns the optional display name
func (u *User) DisplayName() string { return u.displayName }

// SignInMethod returns how the user authenticates
func (u *User) SignInMethod() SignInMethod { return u.signInMethod }

// Status returns the lifecycle state
func (u *User) Status() UserStatus { return u.status }

// ExternalID returns the identity-provider reference
func (u *User) ExternalID() string { return u.externalID }

// IsDeleted reports whether the user is terminally deleted
func (u *User) IsDeleted() bool { return u.status == UserStatusDeleted }

// IsActive reports whether the user is active
func (u *User) IsActive() bool { return u.status == UserStatusActive }

func (u *User) guardNotDeleted() error {
	if u.IsDeleted() {
		return errors.NewValidationError("user is deleted and can no longer be modified").
			WithCode("USER_DELETED").WithDetail("user_id", u.ID())
	}
	return nil
}

// UpdateProfile changes the display name and username and records an updated
// event. Pass a zero username to clear the handle.
func (u *User) UpdateProfile(displayName string, username valueobjects.Username) error {
	if err := u.guardNotDeleted(); err != nil {
		return err
	}
	u.displayName = displayName
	u.username = username
	u.recordEvent(events.UserUpdated, map[string]interface{}{
		"display_name": displayName,
		"username":     username.String(),
	})
	return nil
}

// Disable moves an active user to DISABLED
func (u *User) Disable() error {
	if err := u.guardNotDeleted(); err != nil {
		return err
	}
	if u.status != UserStatusActive {
		return errors.NewValidationError("only an active user can be disabled").
			WithCode("USER_NOT_ACTIVE").WithDetail("status", string(u.status))
	}
	u.status = UserStatusDisabled
	u.recordEvent(events.UserDisabled, nil)
	return nil
}

// Enable moves a disabled user back to ACTIVE
func (u *User) Enable() error {
	if err := u.guardNotDeleted(); err != nil {
		return err
	}
	if u.status != UserStatusDisabled {
		return errors.NewValidationError("only a disabled user can be enabled").
			WithCode("USER_NOT_DISABLED").WithDetail("status", string(u.status))
	}
	u.status = UserStatusActive
	u.recordEvent(events.UserEnabled, nil)
	return nil
}

// MarkDeleted moves the user to the terminal DELETED state. The repository
// writes the pending-deletion side record when it persists this transition.
func (u *User) MarkDeleted() error {
	if err := u.guardNotDeleted(); err != nil {
		return err
	}
	u.status = UserStatusDeleted
	u.recordEvent(events.UserDeleted, nil)
	return nil
}
