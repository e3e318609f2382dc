package ports

import "context"

// PasswordResetService drives the reset-token lifecycle: Request issues a
// single-use, time-bounded token for the account behind email; SetPassword
// consumes a token and stores the new password in the same write.
type PasswordResetService interface {
	Request(ctx context.Context, email string) error
	SetPassword(ctx context.Context, token, newPassword string) error
}

// ResetThrottle rate-limits reset issuance per email address. Allow reports
// whether a new request may proceed and records it when it does.
type ResetThrottle interface {
	Allow(ctx context.Context, email string) (bool, error)
}
