package ports

import (
	"context"
	"time"

	"github.com/gemquest/identity-api/internal/core/domain"
)

// UserRepository defines the persistence operations the identity core needs.
//
// ConsumePasswordReset must be atomic with respect to concurrent callers:
// the token match, the expiry check (expiry >= now) and the update that sets
// the new password hash and clears both reset fields happen as a single
// conditional write, so a token can be consumed at most once.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByValidResetToken(ctx context.Context, token string, now time.Time) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	SetResetToken(ctx context.Context, id, token string, expiry time.Time) error
	ConsumePasswordReset(ctx context.Context, token string, now time.Time, passwordHash string) (*domain.User, error)
}
