package commands

// CreateGroupCommand creates a new user group
type CreateGroupCommand struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// UpdateGroupCommand renames a group and replaces its description
type UpdateGroupCommand struct {
	GroupID     string `json:"group_id" validate:"required,uuid4"`
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// DeleteGroupCommand removes a group and its memberships
type DeleteGroupCommand struct {
	GroupID string `json:"group_id" validate:"required,uuid4"`
}

// AddRoleToGroupCommand grants a role to every member of a group
type AddRoleToGroupCommand struct {
	GroupID  string `json:"group_id" validate:"required,uuid4"`
	RoleCode string `json:"role_code" validate:"required,max=64"`
}

// RemoveRoleFromGroupCommand revokes a role from a group
type RemoveRoleFromGroupCommand struct {
	GroupID  string `json:"group_id" validate:"required,uuid4"`
	RoleCode string `json:"role_code" validate:"required,max=64"`
}

// AddUserToGroupCommand places a user in a group
type AddUserToGroupCommand struct {
	GroupID string `json:"group_id" validate:"required,uuid4"`
	UserID  string `json:"user_id" validate:"required,uuid4"`
}

// RemoveUserFromGroupCommand removes a user from a group
type RemoveUserFromGroupCommand struct {
	GroupID string `json:"group_id" validate:"required,uuid4"`
	UserID  string `json:"user_id" validate:"required,uuid4"`
}
