package services

import (
	"strings"
	"testing"
	"time"

	"github.com/amirphl/lead-connect/models"
	"github.com/amirphl/lead-connect/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-signing-32-chars"

// createTestTokenService creates a token service for testing with symmetric key
func createTestTokenService(ttl time.Duration) (TokenService, error) {
	return NewTokenService(ttl, "test-issuer", "test-audience", false, "", "", testSecret)
}

func testUser() *models.User {
	return &models.User{
		UserID:   "user-101",
		Username: "ic101",
		Role:     models.UserRoleIC,
		HubName:  utils.ToPtr("Hub A"),
	}
}

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name        string
		ttl         time.Duration
		issuer      string
		audience    string
		useRSAKeys  bool
		secretKey   string
		expectError bool
	}{
		{
			name:      "valid symmetric key configuration",
			ttl:       15 * time.Minute,
			issuer:    "test-issuer",
			audience:  "test-audience",
			secretKey: testSecret,
		},
		{
			name:        "missing secret key",
			ttl:         15 * time.Minute,
			issuer:      "test-issuer",
			audience:    "test-audience",
			expectError: true,
		},
		{
			name:        "rsa without keys",
			ttl:         15 * time.Minute,
			useRSAKeys:  true,
			expectError: true,
		},
		{
			name:      "zero ttl falls back to default",
			secretKey: testSecret,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewTokenService(tt.ttl, tt.issuer, tt.audience, tt.useRSAKeys, "", "", tt.secretKey)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, service)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, service)
			if tt.ttl == 0 {
				assert.Equal(t, utils.AccessTokenTTL, service.AccessTokenTTL())
			}
		})
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	service, err := createTestTokenService(15 * time.Minute)
	require.NoError(t, err)

	user := testUser()
	token, expiresAt, err := service.GenerateAccessToken(user)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, 3, len(strings.Split(token, ".")))
	assert.WithinDuration(t, utils.UTCNow().Add(15*time.Minute), expiresAt, 5*time.Second)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.UserID, claims.UserID)
	assert.Equal(t, user.Username, claims.Username)
	assert.Equal(t, models.UserRoleIC, claims.Role)
	assert.NotEmpty(t, claims.TokenID)
	assert.Equal(t, models.Actor{UserID: "user-101", Username: "ic101", Role: models.UserRoleIC}, claims.Actor())
}

func TestValidateToken(t *testing.T) {
	service, err := createTestTokenService(15 * time.Minute)
	require.NoError(t, err)
	token, _, err := service.GenerateAccessToken(testUser())
	require.NoError(t, err)

	otherIssuer, err := NewTokenService(15*time.Minute, "other-issuer", "test-audience", false, "", "", testSecret)
	require.NoError(t, err)
	otherToken, _, err := otherIssuer.GenerateAccessToken(testUser())
	require.NoError(t, err)

	otherSecret, err := NewTokenService(15*time.Minute, "test-issuer", "test-audience", false, "", "", "another-secret-key-for-jwt-signing-xx")
	require.NoError(t, err)
	forged, _, err := otherSecret.GenerateAccessToken(testUser())
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "valid token", token: token},
		{name: "garbage", token: "not-a-token", wantErr: ErrTokenInvalid},
		{name: "empty", token: "", wantErr: ErrTokenInvalid},
		{name: "wrong issuer", token: otherToken, wantErr: ErrTokenInvalid},
		{name: "wrong secret", token: forged, wantErr: ErrTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.ValidateToken(tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, claims)
		})
	}
}

func TestRevokeToken(t *testing.T) {
	service, err := createTestTokenService(15 * time.Minute)
	require.NoError(t, err)

	token, _, err := service.GenerateAccessToken(testUser())
	require.NoError(t, err)
	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.False(t, service.IsTokenRevoked(claims.TokenID))

	require.NoError(t, service.RevokeToken(token))
	assert.True(t, service.IsTokenRevoked(claims.TokenID))

	_, err = service.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// a second token for the same user is unaffected
	other, _, err := service.GenerateAccessToken(testUser())
	require.NoError(t, err)
	_, err = service.ValidateToken(other)
	assert.NoError(t, err)
}

func TestTokenExpiration(t *testing.T) {
	service, err := createTestTokenService(time.Nanosecond)
	require.NoError(t, err)

	token, _, err := service.GenerateAccessToken(testUser())
	require.NoError(t, err)

	// exp has second precision, so wait past the next second boundary
	time.Sleep(1100 * time.Millisecond)

	_, err = service.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}
