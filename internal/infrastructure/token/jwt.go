package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/student-registry/registry-api/internal/core/domain"
	"github.com/student-registry/registry-api/internal/core/ports"
)

// Claims is the payload of both access and refresh tokens. The user ID
// travels in the registered "sub" claim.
type Claims struct {
	Type ports.TokenKind `json:"type"`
	jwt.RegisteredClaims
}

// Manager signs and verifies HS256 tokens.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewManager(secret string, accessTTL, refreshTTL time.Duration) *Manager {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &Manager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (m *Manager) TTL(kind ports.TokenKind) time.Duration {
	if kind == ports.RefreshToken {
		return m.refreshTTL
	}
	return m.accessTTL
}

func (m *Manager) Issue(userID string, kind ports.TokenKind) (string, error) {
	now := m.now()
	claims := Claims{
		Type: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.TTL(kind))),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.secret)
}

// Verify parses token, checks signature, expiry and kind, and returns the
// subject. Every failure is reported as domain.ErrUnauthorized.
func (m *Manager) Verify(token string, kind ports.TokenKind) (string, error) {
	if token == "" {
		return "", domain.ErrUnauthorized
	}

	var claims Claims
	tkn, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !tkn.Valid {
		return "", errors.Join(domain.ErrUnauthorized, err)
	}

	if claims.Type != kind || claims.Subject == "" {
		return "", domain.ErrUnauthorized
	}
	return claims.Subject, nil
}
