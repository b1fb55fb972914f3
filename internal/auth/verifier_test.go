package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("missing secret", func(t *testing.T) {
		_, err := New(Config{})
		assert.ErrorIs(t, err, ErrMissingSecret)
	})

	t.Run("zero ttl gets a default", func(t *testing.T) {
		v, err := New(Config{Secret: "s3cret"})
		require.NoError(t, err)

		token, err := v.Issue(1)
		require.NoError(t, err)

		userID, err := v.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, int64(1), userID)
	})
}

func TestJWTVerifier_RoundTrip(t *testing.T) {
	t.Parallel()

	v, err := New(Config{Secret: "s3cret", TTL: time.Hour, Issuer: "notifier"})
	require.NoError(t, err)

	token, err := v.Issue(42)
	require.NoError(t, err)

	userID, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestJWTVerifier_Verify_Failures(t *testing.T) {
	t.Parallel()

	v, err := New(Config{Secret: "s3cret", TTL: time.Hour})
	require.NoError(t, err)

	sign := func(t *testing.T, secret string, claims Claims) string {
		t.Helper()
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return signed
	}

	now := time.Now()

	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "garbage",
			token: "definitely.not.ajwt",
		},
		{
			name:  "empty",
			token: "",
		},
		{
			name: "wrong secret",
			token: sign(t, "other-secret", Claims{
				RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
				UserID:           7,
			}),
		},
		{
			name: "expired",
			token: sign(t, "s3cret", Claims{
				RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute))},
				UserID:           7,
			}),
		},
		{
			name: "missing user id",
			token: sign(t, "s3cret", Claims{
				RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
			}),
		},
		{
			name: "negative user id",
			token: sign(t, "s3cret", Claims{
				RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
				UserID:           -1,
			}),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := v.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestJWTVerifier_Verify_RejectsUnexpectedAlgorithm(t *testing.T) {
	t.Parallel()

	v, err := New(Config{Secret: "s3cret"})
	require.NoError(t, err)

	// alg=none with the signature stripped must never validate.
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           7,
	})
	unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = v.Verify(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
