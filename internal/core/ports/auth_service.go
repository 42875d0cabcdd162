package ports

import (
	"context"

	"github.com/student-registry/registry-api/internal/core/domain"
)

type AuthService interface {
	RegisterUser(ctx context.Context, username, email, password string) (*domain.User, error)
	Login(ctx context.Context, identifier, password string) (*TokenPair, *domain.User, error)
	// Refresh exchanges a refresh token for a new access token.
	Refresh(ctx context.Context, refreshToken string) (*IssuedToken, error)
	Profile(ctx context.Context, userID string) (*domain.User, error)
}
