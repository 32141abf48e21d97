package commands

// RegisterUserCommand creates a new account. Password registrations carry the
// credentials the identity provider will own; social registrations carry the
// provider token to verify instead.
type RegisterUserCommand struct {
	Email        string `json:"email" validate:"required,email"`
	Username     string `json:"username" validate:"omitempty,min=3,max=32"`
	DisplayName  string `json:"display_name" validate:"max=200"`
	SignInMethod string `json:"sign_in_method" validate:"required,oneof=password google apple"`
	Password     string `json:"password" validate:"required_if=SignInMethod password,omitempty,min=8,max=72"`
	IdentityToken string `json:"identity_token" validate:"required_unless=SignInMethod password"`
}

// UpdateUserProfileCommand changes display name and username
type UpdateUserProfileCommand struct {
	UserID      string `json:"user_id" validate:"required,uuid4"`
	DisplayName string `json:"display_name" validate:"max=200"`
	Username    string `json:"username" validate:"omitempty,min=3,max=32"`
}

// DisableUserCommand moves an active user to DISABLED
type DisableUserCommand struct {
	UserID string `json:"user_id" validate:"required,uuid4"`
}

// EnableUserCommand moves a disabled user back to ACTIVE
type EnableUserCommand struct {
	UserID string `json:"user_id" validate:"required,uuid4"`
}

// DeleteUserCommand moves a user to the terminal DELETED state
type DeleteUserCommand struct {
	UserID string `json:"user_id" validate:"required,uuid4"`
}
