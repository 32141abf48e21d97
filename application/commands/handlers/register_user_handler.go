package handlers

import (
	"context"

	"go.uber.org/zap"

	"idadmin/application/commands"
	"idadmin/application/ports"
	"idadmin/application/services"
	"idadmin/domain/core/aggregates"
	"idadmin/domain/core/valueobjects"
	"idadmin/pkg/errors"
)

// RegisterUserHandler handles account registration. Registration is the one
// public command: there is no principal to authorize, so the pipeline starts
// at validation.
type RegisterUserHandler struct {
	users      ports.UserRepository
	identity   ports.IdentityProvider
	validator  *services.UserValidator
	dispatcher ports.EventDispatcher
	logger     *zap.Logger
}

// NewRegisterUserHandler creates a new handler instance
func NewRegisterUserHandler(
	users ports.UserRepository,
	identity ports.IdentityProvider,
	validator *services.UserValidator,
	dispatcher ports.EventDispatcher,
	logger *zap.Logger,
) *RegisterUserHandler {
	return &RegisterUserHandler{
		users:      users,
		identity:   identity,
		validator:  validator,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Handle executes the register user command
func (h *RegisterUserHandler) Handle(ctx context.Context, cmd commands.RegisterUserCommand) (*aggregates.User, error) {
	if err := commands.Validate(cmd); err != nil {
		return nil, err
	}

	email, err := valueobjects.NewEmail(cmd.Email)
	if err != nil {
		return nil, err
	}
	var username valueobjects.Username
	if cmd.Username != "" {
		if username, err = valueobjects.NewUsername(cmd.Username); err != nil {
			return nil, err
		}
	}

	// Uniqueness checks short-circuit the pipeline before any row is written.
	if err := h.validator.EmailAvailable(ctx, email, ""); err != nil {
		return nil, err
	}
	if err := h.validator.UsernameAvailable(ctx, username, ""); err != nil {
		return nil, err
	}

	method := aggregates.SignInMethod(cmd.SignInMethod)
	externalID, err := h.resolveExternalIdentity(ctx, cmd, email, method)
	if err != nil {
		return nil, err
	}

	existing, err := h.users.FindByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.NewConflictError("identity is already registered").
			WithCode("IDENTITY_ALREADY_REGISTERED")
	}

	user, err := aggregates.NewUser(email, username, cmd.DisplayName, method, externalID, "")
	if err != nil {
		return nil, err
	}

	// The remaining race (two concurrent registrations for the same external
	// identity) surfaces here as a unique-constraint conflict from the store.
	evts := user.Events()
	if err := h.users.Save(ctx, user, nil); err != nil {
		return nil, err
	}
	if err := h.dispatcher.Dispatch(ctx, evts); err != nil {
		return nil, err
	}

	h.logger.Info("User registered",
		zap.String("user_id", user.ID()),
		zap.String("sign_in_method", cmd.SignInMethod),
	)
	return user, nil
}

func (h *RegisterUserHandler) resolveExternalIdentity(ctx context.Context, cmd commands.RegisterUserCommand, email valueobjects.Email, method aggregates.SignInMethod) (string, error) {
	if method == aggregates.SignInPassword {
		return h.identity.CreateUser(ctx, ports.Credentials{
			Email:    email.String(),
			Password: cmd.Password,
		})
	}

	externalID, err := h.identity.Verify(ctx, cmd.IdentityToken)
	if err != nil {
		return "", errors.NewUnauthorizedError("identity token could not be verified").
			WithCode("IDENTITY_TOKEN_INVALID").WithCause(err)
	}
	return externalID, nil
}
