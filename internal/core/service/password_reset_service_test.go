package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/gemquest/identity-api/internal/core/domain"
	"github.com/gemquest/identity-api/internal/core/ports"
)

type stubUserRepo struct {
	users  map[string]*domain.User // keyed by id
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	if u.ResetToken != nil {
		token := *u.ResetToken
		clone.ResetToken = &token
	}
	if u.ResetTokenExpiry != nil {
		expiry := *u.ResetTokenExpiry
		clone.ResetTokenExpiry = &expiry
	}
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	copy := cloneUser(user)
	r.nextID++
	copy.ID = fmt.Sprintf("user_%d", r.nextID)
	r.users[copy.ID] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByValidResetToken(_ context.Context, token string, now time.Time) (*domain.User, error) {
	for _, u := range r.users {
		if u.ResetToken != nil && *u.ResetToken == token && !u.ResetTokenExpiry.Before(now) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrInvalidResetToken
}

func (r *stubUserRepo) SetResetToken(_ context.Context, id, token string, expiry time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.ResetToken = &token
	u.ResetTokenExpiry = &expiry
	return nil
}

func (r *stubUserRepo) ConsumePasswordReset(_ context.Context, token string, now time.Time, passwordHash string) (*domain.User, error) {
	for _, u := range r.users {
		if u.ResetToken != nil && *u.ResetToken == token && !u.ResetTokenExpiry.Before(now) {
			u.PasswordHash = passwordHash
			u.ResetToken = nil
			u.ResetTokenExpiry = nil
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrInvalidResetToken
}

type recordingDispatcher struct {
	messages []ports.MailMessage
}

func (d *recordingDispatcher) Enqueue(msg ports.MailMessage) {
	d.messages = append(d.messages, msg)
}

type stubThrottle struct {
	allow bool
}

func (t *stubThrottle) Allow(context.Context, string) (bool, error) {
	return t.allow, nil
}

func seedUser(t *testing.T, repo *stubUserRepo, email string) *domain.User {
	t.Helper()
	user, err := repo.Create(context.Background(), &domain.User{
		Email:        email,
		PasswordHash: "old-hash",
		Role:         domain.RoleUser,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func newResetFixture(t *testing.T) (*PasswordResetService, *stubUserRepo, *recordingDispatcher) {
	t.Helper()
	repo := newStubUserRepo()
	mail := &recordingDispatcher{}
	svc := NewPasswordResetService(repo, mail, nil, time.Hour, zerolog.Nop())
	return svc, repo, mail
}

func TestPasswordReset_RequestIssuesToken(t *testing.T) {
	svc, repo, mail := newResetFixture(t)
	user := seedUser(t, repo, "user@example.com")

	before := time.Now()
	if err := svc.Request(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("Request returned error: %v", err)
	}

	stored := repo.users[user.ID]
	if stored.ResetToken == nil || stored.ResetTokenExpiry == nil {
		t.Fatalf("expected token and expiry to be set together")
	}
	if len(*stored.ResetToken) != 64 {
		t.Fatalf("expected 64-char hex token, got %d chars", len(*stored.ResetToken))
	}

	wantExpiry := before.Add(time.Hour)
	if stored.ResetTokenExpiry.Before(wantExpiry.Add(-time.Minute)) ||
		stored.ResetTokenExpiry.After(wantExpiry.Add(time.Minute)) {
		t.Fatalf("expiry not ~1h out: %v", stored.ResetTokenExpiry)
	}

	if len(mail.messages) != 1 {
		t.Fatalf("expected 1 mail enqueued, got %d", len(mail.messages))
	}
	msg := mail.messages[0]
	if msg.To != "user@example.com" || msg.Template != "password-reset" {
		t.Fatalf("unexpected mail: %+v", msg)
	}
	if msg.Vars["token"] != *stored.ResetToken {
		t.Fatalf("mail does not carry the persisted token")
	}
}

func TestPasswordReset_RequestUnknownEmail(t *testing.T) {
	svc, repo, mail := newResetFixture(t)
	seedUser(t, repo, "user@example.com")

	err := svc.Request(context.Background(), "missing@example.com")
	if err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if len(mail.messages) != 0 {
		t.Fatalf("no mail should be sent for unknown email")
	}
	for _, u := range repo.users {
		if u.ResetToken != nil {
			t.Fatalf("no token state change expected")
		}
	}
}

func TestPasswordReset_RoundTripConsumesExactlyOnce(t *testing.T) {
	svc, repo, mail := newResetFixture(t)
	user := seedUser(t, repo, "user@example.com")

	if err := svc.Request(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("Request returned error: %v", err)
	}
	token := mail.messages[0].Vars["token"].(string)

	if err := svc.SetPassword(context.Background(), token, "new-password"); err != nil {
		t.Fatalf("SetPassword returned error: %v", err)
	}

	stored := repo.users[user.ID]
	if stored.ResetToken != nil || stored.ResetTokenExpiry != nil {
		t.Fatalf("reset fields must be cleared on consumption")
	}
	if stored.PasswordHash == "old-hash" {
		t.Fatalf("password hash unchanged")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("new-password")); err != nil {
		t.Fatalf("stored hash does not match new password: %v", err)
	}

	// Single-use: the same token must not work twice.
	if err := svc.SetPassword(context.Background(), token, "another-password"); err != domain.ErrInvalidResetToken {
		t.Fatalf("expected ErrInvalidResetToken on replay, got %v", err)
	}
}

func TestPasswordReset_ReissueInvalidatesPreviousToken(t *testing.T) {
	svc, repo, mail := newResetFixture(t)
	seedUser(t, repo, "user@example.com")

	if err := svc.Request(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("first Request: %v", err)
	}
	first := mail.messages[0].Vars["token"].(string)

	if err := svc.Request(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("second Request: %v", err)
	}
	second := mail.messages[1].Vars["token"].(string)
	if first == second {
		t.Fatalf("second issuance must mint a fresh token")
	}

	if err := svc.SetPassword(context.Background(), first, "new-password"); err != domain.ErrInvalidResetToken {
		t.Fatalf("overwritten token must be invalid, got %v", err)
	}
	if err := svc.SetPassword(context.Background(), second, "new-password"); err != nil {
		t.Fatalf("latest token must still work: %v", err)
	}
}

func TestPasswordReset_ExpiryInstantStillValid(t *testing.T) {
	svc, repo, mail := newResetFixture(t)
	user := seedUser(t, repo, "user@example.com")

	if err := svc.Request(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("Request returned error: %v", err)
	}
	token := mail.messages[0].Vars["token"].(string)

	// Consume at exactly the expiry instant: expiry >= now must hold.
	expiry := *repo.users[user.ID].ResetTokenExpiry
	svc.now = func() time.Time { return expiry }

	if err := svc.SetPassword(context.Background(), token, "new-password"); err != nil {
		t.Fatalf("token must be valid at its expiry instant: %v", err)
	}
}

func TestPasswordReset_ExpiredTokenRejected(t *testing.T) {
	svc, repo, mail := newResetFixture(t)
	user := seedUser(t, repo, "user@example.com")

	if err := svc.Request(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("Request returned error: %v", err)
	}
	token := mail.messages[0].Vars["token"].(string)

	expiry := *repo.users[user.ID].ResetTokenExpiry
	svc.now = func() time.Time { return expiry.Add(time.Second) }

	if err := svc.SetPassword(context.Background(), token, "new-password"); err != domain.ErrInvalidResetToken {
		t.Fatalf("expected ErrInvalidResetToken, got %v", err)
	}
	if repo.users[user.ID].PasswordHash != "old-hash" {
		t.Fatalf("password must not change for an expired token")
	}
}

func TestPasswordReset_UnknownTokenRejected(t *testing.T) {
	svc, _, _ := newResetFixture(t)

	if err := svc.SetPassword(context.Background(), "abc", "new-password"); err != domain.ErrInvalidResetToken {
		t.Fatalf("expected ErrInvalidResetToken, got %v", err)
	}
}

func TestPasswordReset_ThrottleBlocksRepeatRequests(t *testing.T) {
	repo := newStubUserRepo()
	mail := &recordingDispatcher{}
	svc := NewPasswordResetService(repo, mail, &stubThrottle{allow: false}, time.Hour, zerolog.Nop())
	seedUser(t, repo, "user@example.com")

	err := svc.Request(context.Background(), "user@example.com")
	if err != domain.ErrResetThrottled {
		t.Fatalf("expected ErrResetThrottled, got %v", err)
	}
	if len(mail.messages) != 0 {
		t.Fatalf("throttled request must not enqueue mail")
	}
}
