package ports

import "time"

// TokenKind distinguishes short-lived access tokens from refresh tokens.
type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

// IssuedToken is a signed token and the lifetime it was signed with.
type IssuedToken struct {
	Value string
	TTL   time.Duration
}

// TokenPair is what a successful login hands back to the transport layer.
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}

// TokenIssuer signs time-bounded tokens bound to a user identity.
type TokenIssuer interface {
	Issue(userID string, kind TokenKind) (string, error)
	TTL(kind TokenKind) time.Duration
}

// TokenVerifier checks a token of the given kind and returns the user
// identity it is bound to, or domain.ErrUnauthorized.
type TokenVerifier interface {
	Verify(token string, kind TokenKind) (string, error)
}

// TokenManager both issues and verifies tokens.
type TokenManager interface {
	TokenIssuer
	TokenVerifier
}
