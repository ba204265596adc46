package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/remedyhub/entitlement/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func sign(t *testing.T, claims jwt.Claims, method jwt.SigningMethod, key interface{}) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims() jwt.StandardClaims {
	return jwt.StandardClaims{
		Subject:   "user-1",
		Issuer:    "idp",
		Audience:  "remedyhub",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}
}

func TestJWTVerifier(t *testing.T) {
	v := NewJWTVerifier(secret, "idp", "remedyhub")
	ctx := context.Background()

	id, err := v.Verify(ctx, sign(t, validClaims(), jwt.SigningMethodHS256, []byte(secret)))
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: "user-1", Verified: true}, id)

	tests := []struct {
		name  string
		token func() string
	}{
		{"empty", func() string { return "" }},
		{"garbage", func() string { return "not.a.jwt" }},
		{"wrong secret", func() string { return sign(t, validClaims(), jwt.SigningMethodHS256, []byte("other")) }},
		{"expired", func() string {
			c := validClaims()
			c.ExpiresAt = time.Now().Add(-time.Minute).Unix()
			return sign(t, c, jwt.SigningMethodHS256, []byte(secret))
		}},
		{"wrong issuer", func() string {
			c := validClaims()
			c.Issuer = "evil"
			return sign(t, c, jwt.SigningMethodHS256, []byte(secret))
		}},
		{"wrong audience", func() string {
			c := validClaims()
			c.Audience = "someone-else"
			return sign(t, c, jwt.SigningMethodHS256, []byte(secret))
		}},
		{"missing subject", func() string {
			c := validClaims()
			c.Subject = ""
			return sign(t, c, jwt.SigningMethodHS256, []byte(secret))
		}},
		{"alg none", func() string {
			return sign(t, validClaims(), jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType)
		}},
		{"hs512 rejected", func() string { return sign(t, validClaims(), jwt.SigningMethodHS512, []byte(secret)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := v.Verify(ctx, tt.token())
			require.ErrorIs(t, err, ErrInvalidToken)
			assert.False(t, id.Verified)
		})
	}
}

func TestJWTVerifier_OptionalIssuerAudience(t *testing.T) {
	v := NewJWTVerifier(secret, "", "")
	c := validClaims()
	c.Issuer, c.Audience = "", ""
	id, err := v.Verify(context.Background(), sign(t, c, jwt.SigningMethodHS256, []byte(secret)))
	require.NoError(t, err)
	assert.Equal(t, "user-1", id.UserID)
}

func TestNewVerifier_RequiresSecret(t *testing.T) {
	_, err := newVerifier(&config.Config{})
	require.Error(t, err)

	v, err := newVerifier(&config.Config{Auth: config.AuthConfig{JWTSecret: secret}})
	require.NoError(t, err)
	assert.NotNil(t, v)
}
