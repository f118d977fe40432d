package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-testing"

func newTestManager() *JWTManager {
	return NewJWTManager(testSecret, 15*time.Minute, 7*24*time.Hour)
}

func TestGenerateToken_Claims(t *testing.T) {
	m := newTestManager()
	fixed := time.Now().Truncate(time.Second)
	m.now = func() time.Time { return fixed }

	access, refresh, err := m.GenerateToken(7, "alice", "ADMIN")
	require.NoError(t, err)
	assert.NotEqual(t, access, refresh)
	assert.Len(t, strings.Split(access, "."), 3)

	claims, err := m.VerifyToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, Issuer, claims.Issuer)
	assert.Equal(t, fixed.Add(15*time.Minute).Unix(), claims.ExpiresAt.Unix())

	rc, err := m.VerifyToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, rc.TokenType)
	assert.Equal(t, fixed.Add(7*24*time.Hour).Unix(), rc.ExpiresAt.Unix())
}

func TestVerifyAccessToken_RejectsRefresh(t *testing.T) {
	m := newTestManager()
	access, refresh, err := m.GenerateToken(1, "alice", "USER")
	require.NoError(t, err)

	_, err = m.VerifyAccessToken(access)
	assert.NoError(t, err)
	_, err = m.VerifyAccessToken(refresh)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestVerifyToken_Rejections(t *testing.T) {
	m := newTestManager()
	good, _, err := m.GenerateToken(1, "alice", "USER")
	require.NoError(t, err)

	expired := NewJWTManager(testSecret, -time.Minute, time.Hour)
	expiredToken, _, err := expired.GenerateToken(1, "alice", "USER")
	require.NoError(t, err)

	otherSecret, _, err := NewJWTManager("another-secret", time.Minute, time.Hour).GenerateToken(1, "alice", "USER")
	require.NoError(t, err)

	parts := strings.Split(good, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &CustomClaims{
		TokenType:        TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: Issuer, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &CustomClaims{
		TokenType:        TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	cases := map[string]struct {
		token string
		want  error
	}{
		"expired":        {expiredToken, jwt.ErrTokenExpired},
		"wrong secret":   {otherSecret, jwt.ErrTokenSignatureInvalid},
		"tampered":       {tampered, nil},
		"not a jwt":      {"not-a-jwt", jwt.ErrTokenMalformed},
		"empty":          {"", jwt.ErrTokenMalformed},
		"hs512":          {hs512, jwt.ErrTokenSignatureInvalid},
		"foreign issuer": {foreign, jwt.ErrTokenInvalidIssuer},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			claims, err := m.VerifyToken(tc.token)
			require.Error(t, err)
			assert.Nil(t, claims)
			if tc.want != nil {
				assert.True(t, errors.Is(err, tc.want), "got %v", err)
			}
		})
	}
}

func TestRemainingTTL(t *testing.T) {
	now := time.Now()
	claims := &CustomClaims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}}

	ttl := RemainingTTL(claims, now)
	assert.InDelta(t, time.Hour.Seconds(), ttl.Seconds(), 1)
	assert.Zero(t, RemainingTTL(claims, now.Add(2*time.Hour)))
	assert.Zero(t, RemainingTTL(&CustomClaims{}, now))
	assert.Zero(t, RemainingTTL(nil, now))
}
