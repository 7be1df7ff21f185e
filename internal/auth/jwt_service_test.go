package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"foodshare/internal/model"
)

func TestJWTService_AccessTokenRoundTrip(t *testing.T) {
	service := NewJWTService("test-secret")

	token, err := service.GenerateAccessToken(42, "grace@example.com", model.RoleUser)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "grace@example.com", claims.Email)
	assert.Equal(t, model.RoleUser, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestJWTService_RefreshTokenCarriesID(t *testing.T) {
	service := NewJWTService("test-secret")

	tokenID, token, err := service.GenerateRefreshToken(42, "grace@example.com", model.RoleAdmin)
	assert.NoError(t, err)
	assert.NotEmpty(t, tokenID)

	extracted, err := service.ExtractTokenID(token)
	assert.NoError(t, err)
	assert.Equal(t, tokenID, extracted)
}

func TestJWTService_RejectsWrongSecret(t *testing.T) {
	issuer := NewJWTService("secret-a")
	verifier := NewJWTService("secret-b")

	token, err := issuer.GenerateAccessToken(1, "a@example.com", model.RoleUser)
	assert.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestRole_Allowed(t *testing.T) {
	assert.True(t, model.RoleAdmin.Allowed(model.RoleUser, model.RoleAdmin))
	assert.True(t, model.RoleUser.Allowed(model.RoleUser, model.RoleAdmin))
	assert.False(t, model.RoleOff.Allowed(model.RoleUser, model.RoleAdmin))
	assert.False(t, model.Role("nonsense").Allowed(model.RoleUser))
}
