package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	cmdhandlers "idadmin/application/commands/handlers"
	"idadmin/application/commands"
	"idadmin/application/queries"
	qryhandlers "idadmin/application/queries/handlers"
	"idadmin/pkg/common"
	"idadmin/pkg/errors"
)

// GroupHandler serves the user-group resource, including role and user
// membership
type GroupHandler struct {
	get     *qryhandlers.GetGroupHandler
	create  *cmdhandlers.CreateGroupHandler
	update  *cmdhandlers.UpdateGroupHandler
	delete  *cmdhandlers.DeleteGroupHandler
	roles   *cmdhandlers.GroupRoleHandler
	members *cmdhandlers.GroupUserHandler
	errors  *errors.ErrorHandler
	logger  *zap.Logger
}

// NewGroupHandler creates a new group handler
func NewGroupHandler(
	get *qryhandlers.GetGroupHandler,
	create *cmdhandlers.CreateGroupHandler,
	update *cmdhandlers.UpdateGroupHandler,
	delete_ *cmdhandlers.DeleteGroupHandler,
	roles *cmdhandlers.GroupRoleHandler,
	members *cmdhandlers.GroupUserHandler,
	errorHandler *errors.ErrorHandler,
	logger *zap.Logger,
) *GroupHandler {
	return &GroupHandler{
		get:     get,
		create:  create,
		update:  update,
		delete:  delete_,
		roles:   roles,
		members: members,
		errors:  errorHandler,
		logger:  logger,
	}
}

// Get handles GET /groups/{groupID}
func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.get.Handle(r.Context(), queries.GetGroupQuery{
		GroupID: chi.URLParam(r, "groupID"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, view)
}

// Create handles POST /groups
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd commands.CreateGroupCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		h.errors.Handle(w, r, errors.NewValidationError("invalid request body").WithCause(err))
		return
	}

	group, err := h.create.Handle(r.Context(), cmd)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"id":      group.ID(),
		"name":    group.Name().String(),
		"version": group.Version(),
	})
}

// Update handles PUT /groups/{groupID}
func (h *GroupHandler) Update(w http.ResponseWriter, r *http.Request) {
	var cmd commands.UpdateGroupCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		h.errors.Handle(w, r, errors.NewValidationError("invalid request body").WithCause(err))
		return
	}
	cmd.GroupID = chi.URLParam(r, "groupID")

	group, err := h.update.Handle(r.Context(), cmd)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"id":      group.ID(),
		"name":    group.Name().String(),
		"version": group.Version(),
	})
}

// Delete handles DELETE /groups/{groupID}
func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.delete.Handle(r.Context(), commands.DeleteGroupCommand{
		GroupID: chi.URLParam(r, "groupID"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// AddRole handles POST /groups/{groupID}/roles
func (h *GroupHandler) AddRole(w http.ResponseWriter, r *http.Request) {
	var cmd commands.AddRoleToGroupCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		h.errors.Handle(w, r, errors.NewValidationError("invalid request body").WithCause(err))
		return
	}
	cmd.GroupID = chi.URLParam(r, "groupID")

	if err := h.roles.HandleAdd(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "added"})
}

// RemoveRole handles DELETE /groups/{groupID}/roles/{roleCode}
func (h *GroupHandler) RemoveRole(w http.ResponseWriter, r *http.Request) {
	err := h.roles.HandleRemove(r.Context(), commands.RemoveRoleFromGroupCommand{
		GroupID:  chi.URLParam(r, "groupID"),
		RoleCode: chi.URLParam(r, "roleCode"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// AddUser handles POST /groups/{groupID}/users
func (h *GroupHandler) AddUser(w http.ResponseWriter, r *http.Request) {
	var cmd commands.AddUserToGroupCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		h.errors.Handle(w, r, errors.NewValidationError("invalid request body").WithCause(err))
		return
	}
	cmd.GroupID = chi.URLParam(r, "groupID")

	if err := h.members.HandleAdd(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "added"})
}

// RemoveUser handles DELETE /groups/{groupID}/users/{userID}
func (h *GroupHandler) RemoveUser(w http.ResponseWriter, r *http.Request) {
	err := h.members.HandleRemove(r.Context(), commands.RemoveUserFromGroupCommand{
		GroupID: chi.URLParam(r, "groupID"),
		UserID:  chi.URLParam(r, "userID"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
