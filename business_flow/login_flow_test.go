package businessflow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/amirphl/lead-connect/app/dto"
	"github.com/amirphl/lead-connect/app/services"
	"github.com/amirphl/lead-connect/models"
	testingutil "github.com/amirphl/lead-connect/testing"
	"github.com/amirphl/lead-connect/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLoginFlow(t *testing.T) (LoginFlow, services.TokenService) {
	t.Helper()
	env := newTestEnv(t)

	// one account still carries the digest written by the first version of the tracker
	snapshot := env.load(t)
	sum := sha256.Sum256([]byte("legacy-pass"))
	legacy := testingutil.NewUser("ic301", "unused", models.UserRoleIC, "Hub C")
	legacy.PasswordHash = hex.EncodeToString(sum[:])
	snapshot.Users = append(snapshot.Users, legacy)
	require.NoError(t, env.store.SaveAllData(context.Background(), snapshot))

	tokens, err := services.NewTokenService(time.Hour, "lead-connect", "lead-connect-api", false, "", "", "test-secret")
	require.NoError(t, err)
	return NewLoginFlow(env.users, tokens, zap.NewNop()), tokens
}

func TestLogin(t *testing.T) {
	flow, tokens := newTestLoginFlow(t)

	tests := []struct {
		name     string
		username string
		password string
		wantRole models.UserRole
		check    func(error) bool
	}{
		{name: "admin", username: "admin", password: "admin123", wantRole: models.UserRoleAdmin},
		{name: "representative with padded name", username: " ic101 ", password: "password1", wantRole: models.UserRoleIC},
		{name: "legacy digest", username: "ic301", password: "legacy-pass", wantRole: models.UserRoleIC},
		{name: "wrong password", username: "ic101", password: "password4", check: IsIncorrectPassword},
		{name: "unknown user", username: "ghost", password: "password1", check: IsUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := flow.Login(context.Background(), &dto.LoginRequest{Username: tt.username, Password: tt.password})
			if tt.check != nil {
				require.Error(t, err)
				assert.True(t, tt.check(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Bearer", resp.TokenType)
			assert.Equal(t, 3600, resp.ExpiresIn)
			assert.Equal(t, tt.wantRole.String(), resp.User.Role)

			claims, err := tokens.ValidateToken(resp.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, resp.User.UserID, claims.UserID)
			assert.Equal(t, resp.User.Username, claims.Actor().Username)
		})
	}
}

func TestLogout(t *testing.T) {
	flow, tokens := newTestLoginFlow(t)

	resp, err := flow.Login(context.Background(), &dto.LoginRequest{Username: "ic201", Password: "password4"})
	require.NoError(t, err)
	assert.Equal(t, "Hub B", resp.User.HubName)
	assert.WithinDuration(t, utils.UTCNow().Add(time.Hour), resp.ExpiresAt, 5*time.Second)

	require.NoError(t, flow.Logout(context.Background(), resp.AccessToken))
	_, err = tokens.ValidateToken(resp.AccessToken)
	assert.ErrorIs(t, err, services.ErrTokenRevoked)

	// a revoked token cannot be used to log out again
	assert.Error(t, flow.Logout(context.Background(), resp.AccessToken))
}
