package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/student-registry/registry-api/internal/core/domain"
	"github.com/student-registry/registry-api/internal/core/ports"
)

// AuthService implements user registration, login, token refresh and
// profile lookup.
type AuthService struct {
	repo    ports.UserRepository
	tokens  ports.TokenManager
	limiter ports.LoginLimiter
	logger  zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, tokens ports.TokenManager, logger zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, logger: logger}
}

// WithLimiter enables login throttling. A nil limiter disables it.
func (s *AuthService) WithLimiter(limiter ports.LoginLimiter) *AuthService {
	s.limiter = limiter
	return s
}

func (s *AuthService) RegisterUser(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: all fields are required", domain.ErrInvalidInput)
	}

	exists, err := s.repo.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password is too long", domain.ErrInvalidInput)
		}
		return nil, err
	}

	created, err := s.repo.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created, nil
}

// Login checks identifier (username or email) and password and issues an
// access/refresh token pair. Unknown identifiers and wrong passwords both
// yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*ports.TokenPair, *domain.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, nil, fmt.Errorf("%w: username/email and password required", domain.ErrInvalidInput)
	}

	if s.blocked(ctx, identifier) {
		return nil, nil, domain.ErrTooManyAttempts
	}

	user, err := s.repo.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.recordFailure(ctx, identifier)
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.recordFailure(ctx, identifier)
		return nil, nil, domain.ErrInvalidCredentials
	}
	s.resetFailures(ctx, identifier)

	access, err := s.issue(user.ID, ports.AccessToken)
	if err != nil {
		return nil, nil, err
	}
	refresh, err := s.issue(user.ID, ports.RefreshToken)
	if err != nil {
		return nil, nil, err
	}

	return &ports.TokenPair{Access: *access, Refresh: *refresh}, user, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.IssuedToken, error) {
	userID, err := s.tokens.Verify(refreshToken, ports.RefreshToken)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}

	return s.issue(userID, ports.AccessToken)
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *AuthService) issue(userID string, kind ports.TokenKind) (*ports.IssuedToken, error) {
	value, err := s.tokens.Issue(userID, kind)
	if err != nil {
		return nil, fmt.Errorf("issue %s token: %w", kind, err)
	}
	return &ports.IssuedToken{Value: value, TTL: s.tokens.TTL(kind)}, nil
}

// Limiter failures never block a login; they are logged and ignored.

func (s *AuthService) blocked(ctx context.Context, identifier string) bool {
	if s.limiter == nil {
		return false
	}
	blocked, err := s.limiter.Blocked(ctx, identifier)
	if err != nil {
		s.logger.Warn().Err(err).Msg("login limiter check failed")
		return false
	}
	return blocked
}

func (s *AuthService) recordFailure(ctx context.Context, identifier string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.RecordFailure(ctx, identifier); err != nil {
		s.logger.Warn().Err(err).Msg("login limiter record failed")
	}
}

func (s *AuthService) resetFailures(ctx context.Context, identifier string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.Reset(ctx, identifier); err != nil {
		s.logger.Warn().Err(err).Msg("login limiter reset failed")
	}
}
