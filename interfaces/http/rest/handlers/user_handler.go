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

// UserHandler serves the user resource
type UserHandler struct {
	get    *qryhandlers.GetUserHandler
	update *cmdhandlers.UpdateUserProfileHandler
	status *cmdhandlers.SetUserStatusHandler
	delete *cmdhandlers.DeleteUserHandler
	errors *errors.ErrorHandler
	logger *zap.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(
	get *qryhandlers.GetUserHandler,
	update *cmdhandlers.UpdateUserProfileHandler,
	status *cmdhandlers.SetUserStatusHandler,
	delete_ *cmdhandlers.DeleteUserHandler,
	errorHandler *errors.ErrorHandler,
	logger *zap.Logger,
) *UserHandler {
	return &UserHandler{
		get:    get,
		update: update,
		status: status,
		delete: delete_,
		errors: errorHandler,
		logger: logger,
	}
}

// Get handles GET /users/{userID}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.get.Handle(r.Context(), queries.GetUserQuery{
		UserID: chi.URLParam(r, "userID"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, view)
}

// UpdateProfile handles PUT /users/{userID}
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var cmd commands.UpdateUserProfileCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		h.errors.Handle(w, r, errors.NewValidationError("invalid request body").WithCause(err))
		return
	}
	cmd.UserID = chi.URLParam(r, "userID")

	user, err := h.update.Handle(r.Context(), cmd)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, qryhandlers.UserToView(user))
}

// Disable handles POST /users/{userID}/disable
func (h *UserHandler) Disable(w http.ResponseWriter, r *http.Request) {
	err := h.status.HandleDisable(r.Context(), commands.DisableUserCommand{
		UserID: chi.URLParam(r, "userID"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
}

// Enable handles POST /users/{userID}/enable
func (h *UserHandler) Enable(w http.ResponseWriter, r *http.Request) {
	err := h.status.HandleEnable(r.Context(), commands.EnableUserCommand{
		UserID: chi.URLParam(r, "userID"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "active"})
}

// Delete handles DELETE /users/{userID}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.delete.Handle(r.Context(), commands.DeleteUserCommand{
		UserID: chi.URLParam(r, "userID"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
