package identity

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte("dev-only"))
	require.NoError(t, err)
	return s
}

func TestInsecureExtractsUID(t *testing.T) {
	ctx := context.Background()

	uid, err := Insecure{}.Verify(ctx, signed(t, jwt.MapClaims{"user_id": "alice"}))
	require.NoError(t, err)
	assert.Equal(t, "alice", uid)

	// fallback claim order: user_id, uid, sub
	uid, err = Insecure{}.Verify(ctx, signed(t, jwt.MapClaims{"sub": "bob"}))
	require.NoError(t, err)
	assert.Equal(t, "bob", uid)
}

func TestInsecureRejectsGarbage(t *testing.T) {
	_, err := Insecure{}.Verify(context.Background(), "not-a-jwt")
	assert.Error(t, err)
}

func TestInsecureRejectsTokenWithoutUID(t *testing.T) {
	_, err := Insecure{}.Verify(context.Background(), signed(t, jwt.MapClaims{"role": "admin"}))
	assert.ErrorIs(t, err, errNoUIDClaim)
}
