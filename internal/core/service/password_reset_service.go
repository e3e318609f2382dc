package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/gemquest/identity-api/internal/core/domain"
	"github.com/gemquest/identity-api/internal/core/ports"
)

const (
	// resetTokenBytes gives 256 bits of randomness, hex-encoded to 64 chars.
	resetTokenBytes = 32
	resetHashCost   = 10
	defaultResetTTL = time.Hour
)

// PasswordResetService implements the reset-token lifecycle. A token is
// issued per email, overwriting any earlier pending token, and consumed at
// most once through the repository's conditional update.
type PasswordResetService struct {
	repo     ports.UserRepository
	mail     ports.MailDispatcher
	throttle ports.ResetThrottle
	tokenTTL time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

// NewPasswordResetService wires the lifecycle. throttle may be nil, in which
// case issuance is not rate-limited. tokenTTL <= 0 falls back to one hour.
func NewPasswordResetService(repo ports.UserRepository, mail ports.MailDispatcher, throttle ports.ResetThrottle, tokenTTL time.Duration, log zerolog.Logger) *PasswordResetService {
	if tokenTTL <= 0 {
		tokenTTL = defaultResetTTL
	}
	return &PasswordResetService{
		repo:     repo,
		mail:     mail,
		throttle: throttle,
		tokenTTL: tokenTTL,
		now:      time.Now,
		log:      log,
	}
}

// Request issues a fresh reset token for the account behind email and hands
// the notification to the mail dispatcher. The token is persisted before the
// mail is enqueued; a delivery failure never rolls the token back.
func (s *PasswordResetService) Request(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	if s.throttle != nil {
		ok, err := s.throttle.Allow(ctx, user.Email)
		if err != nil {
			return fmt.Errorf("reset throttle: %w", err)
		}
		if !ok {
			return domain.ErrResetThrottled
		}
	}

	token, err := generateResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	expiry := s.now().Add(s.tokenTTL).UTC()

	if err := s.repo.SetResetToken(ctx, user.ID, token, expiry); err != nil {
		return fmt.Errorf("persist reset token: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Time("expiry", expiry).Msg("reset token issued")

	s.mail.Enqueue(ports.MailMessage{
		To:       user.Email,
		Subject:  "Reset your GemQuest password",
		Template: "password-reset",
		Vars: map[string]any{
			"token":      token,
			"expires_at": expiry.Format(time.RFC1123),
		},
	})

	return nil
}

// SetPassword consumes token and stores the bcrypt hash of newPassword. The
// repository clears both reset fields in the same write that updates the
// hash, so a consumed token can never be replayed. Unknown, expired and
// already-consumed tokens all surface as ErrInvalidResetToken.
func (s *PasswordResetService) SetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return domain.ErrInvalidResetToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), resetHashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.ConsumePasswordReset(ctx, token, s.now(), string(hash))
	if err != nil {
		return err
	}

	s.log.Info().Str("user_id", user.ID).Msg("password updated via reset token")
	return nil
}

func generateResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
