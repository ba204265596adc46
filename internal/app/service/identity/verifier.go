package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt"
	"github.com/remedyhub/entitlement/pkg/config"
	"go.uber.org/fx"
)

var ErrInvalidToken = errors.New("invalid identity token")

// Identity is all the service needs from the identity provider.
type Identity struct {
	UserID   string `json:"user_id"`
	Verified bool   `json:"verified"`
}

type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// JWTVerifier checks HS256 tokens minted by the identity provider. The
// subject claim is the stable user id.
type JWTVerifier struct {
	secret   []byte
	issuer   string
	audience string
	parser   *jwt.Parser
}

func NewJWTVerifier(secret, issuer, audience string) *JWTVerifier {
	return &JWTVerifier{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		parser:   &jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}},
	}
}

func (v *JWTVerifier) Verify(_ context.Context, raw string) (Identity, error) {
	if raw == "" {
		return Identity{}, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}
	claims := &jwt.StandardClaims{}
	_, err := v.parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if v.issuer != "" && !claims.VerifyIssuer(v.issuer, true) {
		return Identity{}, fmt.Errorf("%w: issuer %q", ErrInvalidToken, claims.Issuer)
	}
	if v.audience != "" && !claims.VerifyAudience(v.audience, true) {
		return Identity{}, fmt.Errorf("%w: audience %q", ErrInvalidToken, claims.Audience)
	}
	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return Identity{UserID: claims.Subject, Verified: true}, nil
}

func newVerifier(cfg *config.Config) (Verifier, error) {
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret is required")
	}
	return NewJWTVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.Audience), nil
}

var Module = fx.Options(
	fx.Provide(newVerifier),
)
