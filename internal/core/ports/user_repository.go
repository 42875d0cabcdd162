package ports

import (
	"context"

	"github.com/student-registry/registry-api/internal/core/domain"
)

// UserRepository defines persistence for authorized users.
type UserRepository interface {
	// Create inserts the user and returns it with its ID populated.
	// A clash on username or email yields domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByIdentifier matches identifier against username or email.
	FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// ExistsByUsernameOrEmail reports whether either value is already taken.
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
}
