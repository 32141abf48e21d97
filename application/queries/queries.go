package queries

import (
	"time"
)

// GetUserQuery fetches a single user by id
type GetUserQuery struct {
	UserID string `json:"user_id" validate:"required,uuid4"`
}

// GetGroupQuery fetches a single group, including its membership lists
type GetGroupQuery struct {
	GroupID string `json:"group_id" validate:"required,uuid4"`
}

// SignInQuery verifies credentials against the identity provider and returns
// a token. It mutates nothing.
type SignInQuery struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// UserView is the read-side representation of a user
type UserView struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username,omitempty"`
	DisplayName  string    `json:"display_name,omitempty"`
	SignInMethod string    `json:"sign_in_method"`
	Status       string    `json:"status"`
	Version      int       `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
}

// GroupView is the read-side representation of a group
type GroupView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Version     int       `json:"version"`
	Roles       []string  `json:"roles"`
	Users       []string  `json:"users"`
	CreatedAt   time.Time `json:"created_at"`
}

// SignInResult carries the outcome of a successful sign-in
type SignInResult struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}
