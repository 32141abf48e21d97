package ports

import (
	"context"

	"idadmin/domain/events"
)

// IdentityProfile is the provider's view of an identity
type IdentityProfile struct {
	ExternalID string
	Email      string
}

// Credentials are handed to the provider when creating a password identity
type Credentials struct {
	Email    string
	Password string
}

// PasswordVerification is returned on a successful password check
type PasswordVerification struct {
	ExternalID string
	Token      string
}

// IdentityProvider is the external identity service, treated as a black box
// keyed by opaque external identifiers. Concurrent registrations for the same
// externally verified identity are not prevented here; they surface as a
// unique-constraint violation from the store.
type IdentityProvider interface {
	// Verify validates an opaque token and returns the external identity it
	// belongs to
	Verify(ctx context.Context, token string) (string, error)

	// FindUserByID returns the profile for an external identity, or nil when
	// the provider does not know it
	FindUserByID(ctx context.Context, externalID string) (*IdentityProfile, error)

	// CreateUser registers credentials with the provider and returns the new
	// external identifier
	CreateUser(ctx context.Context, creds Credentials) (string, error)

	// VerifyPassword checks an identifier/secret pair and returns the external
	// identity plus a fresh token, or nil when the pair does not match
	VerifyPassword(ctx context.Context, identifier, secret string) (*PasswordVerification, error)
}

// EventDispatcher delivers committed domain events to registered handlers
type EventDispatcher interface {
	Dispatch(ctx context.Context, evts []events.Event) error
}
