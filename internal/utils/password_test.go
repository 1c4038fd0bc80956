package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("motdepasse-très-sûr")
	require.NoError(t, err)
	assert.True(t, IsArgon2Hash(hash))

	ok, err := VerifyPassword("motdepasse-très-sûr", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("mauvais-mot-de-passe", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_SaltsAreUnique(t *testing.T) {
	h1, err := HashPassword("pareil")
	require.NoError(t, err)
	h2, err := HashPassword("pareil")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestVerifyPassword_BcryptFallback(t *testing.T) {
	// Les comptes créés avant la migration Argon2 ont des hashes bcrypt
	legacy, err := bcrypt.GenerateFromPassword([]byte("ancien-compte"), bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, IsBcryptHash(string(legacy)))

	ok, err := VerifyPassword("ancien-compte", string(legacy))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = VerifyPassword("faux", string(legacy))
	assert.False(t, ok)
}

func TestVerifyPassword_RejectsMalformedHash(t *testing.T) {
	_, err := VerifyPassword("x", "pas-un-hash")
	assert.Error(t, err)
}
