// Package authz gates mutations of already-persisted records behind a
// secondary shared-secret check. The check is modeled as an interface
// so it can be swapped for real authorization without touching ledger
// logic.
package authz

import (
	"crypto/subtle"
	"strings"

	"github.com/imaps/imaps-backend/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// Authorizer decides whether a caller-supplied token permits mutating
// an existing record. Creation does not pass through here.
type Authorizer interface {
	AuthorizeMutation(token string) error
}

// SecretAuthorizer checks tokens against a configured secret. The
// secret may be stored as a bcrypt hash ($2a$/$2b$ prefix) or, for
// development, as plaintext compared in constant time.
type SecretAuthorizer struct {
	secret string
}

// NewSecretAuthorizer creates an authorizer for the given secret.
func NewSecretAuthorizer(secret string) *SecretAuthorizer {
	return &SecretAuthorizer{secret: secret}
}

// AuthorizeMutation returns a Forbidden error unless the token matches.
func (a *SecretAuthorizer) AuthorizeMutation(token string) error {
	if token == "" {
		return errors.Forbidden("mutation secret required")
	}

	if strings.HasPrefix(a.secret, "$2") {
		if err := bcrypt.CompareHashAndPassword([]byte(a.secret), []byte(token)); err != nil {
			return errors.Forbidden("invalid mutation secret")
		}
		return nil
	}

	if subtle.ConstantTimeCompare([]byte(a.secret), []byte(token)) != 1 {
		return errors.Forbidden("invalid mutation secret")
	}
	return nil
}

// HashSecret bcrypt-hashes a plaintext secret for storage in
// configuration.
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
