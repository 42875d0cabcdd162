package ports

import "context"

// LoginLimiter tracks failed login attempts per identifier.
type LoginLimiter interface {
	// Blocked reports whether identifier has exhausted its attempts.
	Blocked(ctx context.Context, identifier string) (bool, error)
	RecordFailure(ctx context.Context, identifier string) error
	Reset(ctx context.Context, identifier string) error
}
