// Package di wires the application together at startup. Construction is
// explicit and ordered; there is no runtime registration or reflection.
package di

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	cmdhandlers "idadmin/application/commands/handlers"
	qryhandlers "idadmin/application/queries/handlers"
	"idadmin/application/services"
	"idadmin/domain/core/entities"
	"idadmin/domain/events"
	"idadmin/infrastructure/config"
	"idadmin/infrastructure/identity"
	"idadmin/infrastructure/persistence/postgres"
	"idadmin/interfaces/http/rest"
	resthandlers "idadmin/interfaces/http/rest/handlers"
	"idadmin/pkg/auth"
	"idadmin/pkg/errors"
)

// Container holds the constructed application graph
type Container struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *sql.DB
	Router *rest.Router
}

// InitializeContainer builds the full dependency graph: logger, database,
// repositories, services, the frozen event registry, command/query handlers
// and the HTTP surface
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	db, err := postgres.Open(ctx, cfg.DatabaseDSN, cfg.DatabaseMaxConns)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	// Persistence
	eventStore := postgres.NewEventStore(db)
	userRepo := postgres.NewUserRepository(db, eventStore, logger)
	groupRepo := postgres.NewUserGroupRepository(db, eventStore, logger)
	roleRepo := postgres.NewRoleRepository(db)

	if err := roleRepo.Seed(ctx, defaultRoles()); err != nil {
		return nil, fmt.Errorf("seed roles: %w", err)
	}

	// Auth
	jwtValidator, err := auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
		Audience:  cfg.JWTAudience,
		TokenTTL:  cfg.TokenTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("jwt: %w", err)
	}
	authorizer := auth.NewAuthorizer()
	limiter := auth.NewTokenBucketLimiter(cfg.RateLimitBurst, time.Second/time.Duration(cfg.RateLimitRPS))

	// Identity provider
	identityProvider := identity.NewLocalProvider(db, jwtValidator, logger)

	// Event registry, frozen before any request is served
	dispatcher := buildDispatcher(logger)

	// Services
	userValidator := services.NewUserValidator(userRepo)
	groupValidator := services.NewGroupValidator(groupRepo, roleRepo)

	// Command handlers
	registerUser := cmdhandlers.NewRegisterUserHandler(userRepo, identityProvider, userValidator, dispatcher, logger)
	updateUser := cmdhandlers.NewUpdateUserProfileHandler(userRepo, authorizer, userValidator, dispatcher, logger)
	userStatus := cmdhandlers.NewSetUserStatusHandler(userRepo, authorizer, userValidator, dispatcher, logger)
	deleteUser := cmdhandlers.NewDeleteUserHandler(userRepo, authorizer, userValidator, dispatcher, logger)
	createGroup := cmdhandlers.NewCreateGroupHandler(groupRepo, authorizer, groupValidator, dispatcher, logger)
	updateGroup := cmdhandlers.NewUpdateGroupHandler(groupRepo, authorizer, groupValidator, dispatcher, logger)
	deleteGroup := cmdhandlers.NewDeleteGroupHandler(groupRepo, authorizer, groupValidator, dispatcher, logger)
	groupRoles := cmdhandlers.NewGroupRoleHandler(groupRepo, authorizer, groupValidator, dispatcher, logger)
	groupUsers := cmdhandlers.NewGroupUserHandler(groupRepo, authorizer, groupValidator, userValidator, dispatcher, logger)

	// Query handlers
	getUser := qryhandlers.NewGetUserHandler(userRepo, authorizer, logger)
	getGroup := qryhandlers.NewGetGroupHandler(groupRepo, authorizer, logger)
	signIn := qryhandlers.NewSignInHandler(userRepo, groupRepo, identityProvider, jwtValidator, logger)

	// HTTP surface
	errorHandler := errors.NewErrorHandler(logger, cfg.IsDevelopment())
	authHandler := resthandlers.NewAuthHandler(registerUser, signIn, errorHandler, logger)
	userHandler := resthandlers.NewUserHandler(getUser, updateUser, userStatus, deleteUser, errorHandler, logger)
	groupHandler := resthandlers.NewGroupHandler(getGroup, createGroup, updateGroup, deleteGroup, groupRoles, groupUsers, errorHandler, logger)

	router := rest.NewRouter(authHandler, userHandler, groupHandler, jwtValidator, limiter, cfg.EnableCORS, logger)

	return &Container{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Router: router,
	}, nil
}

// Shutdown releases held resources
func (c *Container) Shutdown() error {
	return c.DB.Close()
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zapCfg.Level = level
	return zapCfg.Build()
}

// buildDispatcher registers the audit subscriber for every event kind and
// freezes the registry
func buildDispatcher(logger *zap.Logger) *events.Dispatcher {
	audit := events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		logger.Info("Domain event",
			zap.String("kind", string(event.Kind)),
			zap.String("aggregate_id", event.AggregateID),
			zap.String("aggregate_name", event.AggregateName),
			zap.Time("occurred_at", event.OccurredAt),
		)
		return nil
	})

	builder := events.NewRegistryBuilder()
	for _, kind := range []events.Kind{
		events.UserCreated, events.UserUpdated, events.UserDisabled,
		events.UserEnabled, events.UserDeleted,
		events.GroupCreated, events.GroupUpdated, events.GroupDeleted,
		events.GroupRoleAdded, events.GroupRoleRemoved,
		events.GroupUserAdded, events.GroupUserRemoved,
	} {
		builder.RegisterFunc(kind, audit)
	}
	return builder.Build()
}

func defaultRoles() []entities.Role {
	return []entities.Role{
		{Code: entities.RoleAdmin, Name: "Administrator", Description: "Full administrative access"},
		{Code: entities.RoleUserAdmin, Name: "User Administrator", Description: "Manage user accounts"},
		{Code: entities.RoleMember, Name: "Member", Description: "Standard member access"},
	}
}
