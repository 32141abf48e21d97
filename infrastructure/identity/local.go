// Package identity ships the local identity-provider adapter: credentials in
// the relational store, bcrypt for secrets, jwt for provider tokens. Remote
// providers plug in behind the same ports.IdentityProvider interface.
package identity

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"idadmin/application/ports"
	"idadmin/infrastructure/persistence/postgres"
	"idadmin/pkg/auth"
	"idadmin/pkg/errors"
)

// LocalProvider implements ports.IdentityProvider against the identities
// table. External identifiers are opaque uuids owned by this provider.
type LocalProvider struct {
	db     *sql.DB
	tokens *auth.JWTValidator
	logger *zap.Logger
}

// NewLocalProvider creates a local identity provider
func NewLocalProvider(db *sql.DB, tokens *auth.JWTValidator, logger *zap.Logger) *LocalProvider {
	return &LocalProvider{db: db, tokens: tokens, logger: logger}
}

var _ ports.IdentityProvider = (*LocalProvider)(nil)

// Verify validates a provider token and returns the external identity it was
// issued for
func (p *LocalProvider) Verify(ctx context.Context, token string) (string, error) {
	claims, err := p.tokens.Validate(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// FindUserByID returns the profile for an external identity, or nil when the
// provider does not know it
func (p *LocalProvider) FindUserByID(ctx context.Context, externalID string) (*ports.IdentityProfile, error) {
	var email string
	err := p.db.QueryRowContext(ctx,
		`SELECT email FROM identities WHERE external_id = $1`, externalID,
	).Scan(&email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ports.IdentityProfile{ExternalID: externalID, Email: email}, nil
}

// normalizeEmail matches the canonical form the email value object stores,
// so lookups stay case-insensitive no matter how the caller typed it.
func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// CreateUser registers credentials and returns the new external identifier.
// A concurrent registration for the same email surfaces as a conflict with
// the storage error intact; other storage failures propagate unchanged.
func (p *LocalProvider) CreateUser(ctx context.Context, creds ports.Credentials) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	externalID := uuid.New().String()
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO identities (external_id, email, password_hash) VALUES ($1, $2, $3)`,
		externalID, normalizeEmail(creds.Email), string(hash),
	)
	if postgres.IsUniqueViolation(err) {
		return "", errors.NewConflictError("identity already exists").
			WithCode(string(errors.ConflictDuplicate)).WithCause(err)
	}
	if err != nil {
		return "", err
	}

	p.logger.Info("Identity created", zap.String("external_id", externalID))
	return externalID, nil
}

// VerifyPassword checks an email/secret pair. A miss on either side returns
// (nil, nil); the caller turns that into its own credentials error.
func (p *LocalProvider) VerifyPassword(ctx context.Context, identifier, secret string) (*ports.PasswordVerification, error) {
	var externalID, hash string
	err := p.db.QueryRowContext(ctx,
		`SELECT external_id, password_hash FROM identities WHERE email = $1`, normalizeEmail(identifier),
	).Scan(&externalID, &hash)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) != nil {
		return nil, nil
	}

	token, err := p.tokens.Issue(externalID, nil)
	if err != nil {
		return nil, err
	}
	return &ports.PasswordVerification{ExternalID: externalID, Token: token}, nil
}
