package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markethub/internal/model"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", "markethub-users", "markethub")
	user := &model.User{ID: 7, Email: "a@x.com", Role: model.RoleAdmin}

	token, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, model.RoleAdmin, claims.Role)
	assert.Equal(t, "a@x.com", claims.Subject)
	assert.Equal(t, "markethub-users", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(AccessTokenExpiry), claims.ExpiresAt.Time, 5*time.Second)
}

func TestJWTService_ValidateToken_Rejections(t *testing.T) {
	user := &model.User{ID: 1, Email: "a@x.com", Role: model.RoleUser}

	tests := []struct {
		name     string
		issue    *JWTService
		validate *JWTService
	}{
		{
			name:     "wrong secret",
			issue:    NewJWTService("secret-a", "markethub-users", "markethub"),
			validate: NewJWTService("secret-b", "markethub-users", "markethub"),
		},
		{
			name:     "wrong issuer",
			issue:    NewJWTService("secret", "someone-else", "markethub"),
			validate: NewJWTService("secret", "markethub-users", "markethub"),
		},
		{
			name:     "wrong audience",
			issue:    NewJWTService("secret", "markethub-users", "other-audience"),
			validate: NewJWTService("secret", "markethub-users", "markethub"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := tt.issue.GenerateAccessToken(user)
			require.NoError(t, err)

			claims, err := tt.validate.ValidateToken(token)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

func TestJWTService_ValidateToken_Garbage(t *testing.T) {
	svc := NewJWTService("test-secret", "markethub-users", "markethub")

	claims, err := svc.ValidateToken("not-a-jwt")
	assert.Error(t, err)
	assert.Nil(t, claims)
}
