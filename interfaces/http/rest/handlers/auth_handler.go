package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	cmdhandlers "idadmin/application/commands/handlers"
	"idadmin/application/commands"
	"idadmin/application/queries"
	qryhandlers "idadmin/application/queries/handlers"
	"idadmin/pkg/common"
	"idadmin/pkg/errors"
)

// AuthHandler serves the public endpoints: registration and sign-in
type AuthHandler struct {
	register *cmdhandlers.RegisterUserHandler
	signIn   *qryhandlers.SignInHandler
	errors   *errors.ErrorHandler
	logger   *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	register *cmdhandlers.RegisterUserHandler,
	signIn *qryhandlers.SignInHandler,
	errorHandler *errors.ErrorHandler,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{register: register, signIn: signIn, errors: errorHandler, logger: logger}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var cmd commands.RegisterUserCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		h.errors.Handle(w, r, errors.NewValidationError("invalid request body").WithCause(err))
		return
	}

	user, err := h.register.Handle(r.Context(), cmd)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, qryhandlers.UserToView(user))
}

// SignIn handles POST /auth/login
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var q queries.SignInQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		h.errors.Handle(w, r, errors.NewValidationError("invalid request body").WithCause(err))
		return
	}

	result, err := h.signIn.Handle(r.Context(), q)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}
