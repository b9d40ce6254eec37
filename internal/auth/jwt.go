// AngelaMos | 2026
// jwt.go

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/carterperez-dev/support-gateway/internal/config"
	"github.com/carterperez-dev/support-gateway/internal/core"
	"github.com/carterperez-dev/support-gateway/internal/middleware"
)

const minSecretLength = 32

// SessionLifetime is how long an issued session token stays valid.
const SessionLifetime = 24 * time.Hour

// TokenManager issues and validates stateless HS256 session tokens. There is
// no server-side session store, so a token stays valid until it expires.
type TokenManager struct {
	secret []byte
	config config.JWTConfig
	now    func() time.Time
}

func NewTokenManager(cfg config.JWTConfig) (*TokenManager, error) {
	if len(cfg.Secret) < minSecretLength {
		return nil, fmt.Errorf(
			"jwt secret must be at least %d bytes",
			minSecretLength,
		)
	}

	return &TokenManager{
		secret: []byte(cfg.Secret),
		config: cfg,
		now:    time.Now,
	}, nil
}

type IssuedToken struct {
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (m *TokenManager) Issue(subject string) (*IssuedToken, error) {
	if subject == "" {
		return nil, fmt.Errorf("issue token: empty subject: %w", core.ErrInvalidInput)
	}

	now := m.now().UTC().Truncate(time.Second)
	expiresAt := now.Add(SessionLifetime)

	token, err := jwt.NewBuilder().
		JwtID(uuid.New().String()).
		Issuer(m.config.Issuer).
		Audience([]string{m.config.Audience}).
		Subject(subject).
		IssuedAt(now).
		Expiration(expiresAt).
		NotBefore(now).
		Claim("type", "session").
		Build()
	if err != nil {
		return nil, fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), m.secret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &IssuedToken{
		Token:     string(signed),
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}, nil
}

// Validate verifies signature, algorithm, audience and expiry and returns the
// subject. Failures wrap core.ErrTokenExpired or core.ErrTokenInvalid.
func (m *TokenManager) Validate(tokenString string) (string, error) {
	claims, err := m.parse(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (m *TokenManager) VerifyAccessToken(
	_ context.Context,
	tokenString string,
) (*middleware.AccessTokenClaims, error) {
	return m.parse(tokenString)
}

func (m *TokenManager) parse(
	tokenString string,
) (*middleware.AccessTokenClaims, error) {
	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKey(jwa.HS256(), m.secret),
		jwt.WithValidate(true),
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithAudience(m.config.Audience),
		jwt.WithClock(jwt.ClockFunc(m.now)),
	)
	if err != nil {
		if isTokenExpiredError(err) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}

	var tokenType string
	if err := token.Get("type", &tokenType); err != nil ||
		tokenType != "session" {
		return nil, fmt.Errorf(
			"verify token: invalid token type: %w",
			core.ErrTokenInvalid,
		)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf(
			"verify token: missing subject: %w",
			core.ErrTokenInvalid,
		)
	}

	expiresAt, ok := token.Expiration()
	if !ok {
		return nil, fmt.Errorf(
			"verify token: missing expiry: %w",
			core.ErrTokenInvalid,
		)
	}

	return &middleware.AccessTokenClaims{
		Subject:   subject,
		ExpiresAt: expiresAt,
	}, nil
}

func isTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "exp") &&
		strings.Contains(errStr, "not satisfied")
}
