package auth_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khiva-consulting/backoffice-api/internal/auth"
	"github.com/khiva-consulting/backoffice-api/internal/config"
	"github.com/khiva-consulting/backoffice-api/internal/domain"
)

func newTestTokenService() *auth.TokenService {
	return auth.NewTokenService(&config.AuthConfig{
		JWTSecret:       "test-secret-not-for-production",
		AccessTokenTTL:  900,
		RefreshTokenTTL: 86400,
		Issuer:          "backoffice-api",
	})
}

func testUser() *domain.User {
	return &domain.User{
		BaseModel: domain.BaseModel{ID: uuid.New()},
		Username:  "aziz",
		Role:      domain.RoleCEOAdmin,
	}
}

func TestTokenService_IssueAndValidate(t *testing.T) {
	svc := newTestTokenService()
	user := testUser()

	tokens, err := svc.IssueTokens(user)
	require.NoError(t, err)
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, "Bearer", tokens.TokenType)
	assert.Equal(t, 900, tokens.ExpiresIn)

	userCtx, err := svc.ValidateAccessToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userCtx.UserID)
	assert.Equal(t, "aziz", userCtx.Username)
	assert.Equal(t, domain.RoleCEOAdmin, userCtx.Role)

	userCtx, err = svc.ValidateRefreshToken(tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userCtx.UserID)
}

func TestTokenService_RejectsWrongTokenType(t *testing.T) {
	svc := newTestTokenService()

	tokens, err := svc.IssueTokens(testUser())
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(tokens.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrWrongTokenType)

	_, err = svc.ValidateRefreshToken(tokens.AccessToken)
	assert.ErrorIs(t, err, auth.ErrWrongTokenType)
}

func TestTokenService_RejectsForeignSecret(t *testing.T) {
	tokens, err := newTestTokenService().IssueTokens(testUser())
	require.NoError(t, err)

	other := auth.NewTokenService(&config.AuthConfig{
		JWTSecret:       "a-different-secret",
		AccessTokenTTL:  900,
		RefreshTokenTTL: 86400,
		Issuer:          "backoffice-api",
	})
	_, err = other.ValidateAccessToken(tokens.AccessToken)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenService_RejectsExpiredToken(t *testing.T) {
	svc := auth.NewTokenService(&config.AuthConfig{
		JWTSecret:       "test-secret-not-for-production",
		AccessTokenTTL:  -60,
		RefreshTokenTTL: -60,
		Issuer:          "backoffice-api",
	})

	tokens, err := svc.IssueTokens(testUser())
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(tokens.AccessToken)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestTokenService_RejectsGarbage(t *testing.T) {
	svc := newTestTokenService()
	_, err := svc.ValidateAccessToken("not.a.token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
