package auth

import (
	"context"

	"idadmin/pkg/common"
	"idadmin/pkg/errors"
)

// Authorizer gates command and query handlers on the request principal.
// Every mutating handler consults it first, before any validation or load.
type Authorizer struct{}

// NewAuthorizer creates an authorizer
func NewAuthorizer() *Authorizer {
	return &Authorizer{}
}

// RequireAuthenticated fails with an unauthorized error when the request
// carries no principal. On success it returns the principal so handlers can
// stamp the operator.
func (a *Authorizer) RequireAuthenticated(ctx context.Context) (*common.Principal, error) {
	p, ok := common.GetPrincipal(ctx)
	if !ok {
		return nil, errors.NewUnauthorizedError("authentication required")
	}
	return p, nil
}

// RequireRole fails with a forbidden error unless the principal carries the
// role
func (a *Authorizer) RequireRole(ctx context.Context, role string) (*common.Principal, error) {
	p, err := a.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	if !p.HasRole(role) {
		return nil, errors.NewForbiddenError("missing required role").
			WithCode("ROLE_REQUIRED").WithDetail("role", role)
	}
	return p, nil
}

// RequireOneOfRoles fails with a forbidden error unless the principal carries
// at least one of the roles
func (a *Authorizer) RequireOneOfRoles(ctx context.Context, roles ...string) (*common.Principal, error) {
	p, err := a.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	for _, role := range roles {
		if p.HasRole(role) {
			return p, nil
		}
	}
	return nil, errors.NewForbiddenError("missing required role").
		WithCode("ROLE_REQUIRED").WithDetail("roles", roles)
}
