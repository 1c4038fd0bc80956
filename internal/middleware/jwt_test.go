package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authPing(authHeader string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", AuthRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id")})
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAuthRequired_MissingOrMalformedHeader(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, authPing("").Code)
	assert.Equal(t, http.StatusUnauthorized, authPing("Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, authPing("Bearer pas-un-jwt").Code)
}

func TestAuthRequired_SecretResolvedAtCallTime(t *testing.T) {
	// Le secret est posé après le chargement du package : une capture à
	// l'init du package vérifierait contre un secret vide
	t.Setenv("JWT_SECRET", "secret-de-test")

	token := signToken(t, "secret-de-test", jwt.MapClaims{
		"user_id": "u-1",
		"email":   "u1@example.com",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	w := authPing("Bearer " + token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "u-1")
}

func TestAuthRequired_RejectsExpiredToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-de-test")

	token := signToken(t, "secret-de-test", jwt.MapClaims{
		"user_id": "u-1",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	assert.Equal(t, http.StatusUnauthorized, authPing("Bearer "+token).Code)
}

func TestAuthRequired_RejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-de-test")

	token := signToken(t, "autre-secret", jwt.MapClaims{
		"user_id": "u-1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	assert.Equal(t, http.StatusUnauthorized, authPing("Bearer "+token).Code)
}

func TestAuthRequired_RejectsTokenWithoutUserID(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-de-test")

	token := signToken(t, "secret-de-test", jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	assert.Equal(t, http.StatusUnauthorized, authPing("Bearer "+token).Code)
}
