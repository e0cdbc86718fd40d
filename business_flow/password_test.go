package businessflow

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPassword(t *testing.T) {
	bcryptHash, err := HashPassword("password1")
	require.NoError(t, err)
	sum := sha256.Sum256([]byte("password1"))
	legacy := hex.EncodeToString(sum[:])

	tests := []struct {
		name  string
		hash  string
		plain string
		want  bool
	}{
		{name: "bcrypt match", hash: bcryptHash, plain: "password1", want: true},
		{name: "bcrypt mismatch", hash: bcryptHash, plain: "password2"},
		{name: "legacy sha256 match", hash: legacy, plain: "password1", want: true},
		{name: "legacy sha256 upper-case", hash: strings.ToUpper(legacy), plain: "password1", want: true},
		{name: "legacy sha256 mismatch", hash: legacy, plain: "Password1"},
		{name: "empty hash", hash: "", plain: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckPassword(tt.hash, tt.plain))
		})
	}
}

func TestHashPasswordSalts(t *testing.T) {
	a, err := HashPassword("admin123")
	require.NoError(t, err)
	b, err := HashPassword("admin123")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "$2"))
}
