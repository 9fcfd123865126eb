package authz

import (
	"testing"

	apperrors "github.com/imaps/imaps-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretAuthorizer_Plaintext(t *testing.T) {
	a := NewSecretAuthorizer("workshop-secret")

	assert.NoError(t, a.AuthorizeMutation("workshop-secret"))

	err := a.AuthorizeMutation("wrong")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}

func TestSecretAuthorizer_EmptyToken(t *testing.T) {
	a := NewSecretAuthorizer("workshop-secret")

	err := a.AuthorizeMutation("")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}

func TestSecretAuthorizer_BcryptHash(t *testing.T) {
	hash, err := HashSecret("workshop-secret")
	require.NoError(t, err)

	a := NewSecretAuthorizer(hash)

	assert.NoError(t, a.AuthorizeMutation("workshop-secret"))

	err = a.AuthorizeMutation("wrong")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}
