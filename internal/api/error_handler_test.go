package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gemquest/identity-api/internal/core/domain"
)

func handleError(t *testing.T, err error) (int, string) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return rec.Code, body["error"]
}

func TestErrorHandler_UserNotFound(t *testing.T) {
	code, msg := handleError(t, domain.ErrUserNotFound)
	if code != http.StatusNotFound || msg != "User not found" {
		t.Fatalf("got %d %q", code, msg)
	}
}

func TestErrorHandler_InvalidResetToken(t *testing.T) {
	code, msg := handleError(t, domain.ErrInvalidResetToken)
	if code != http.StatusBadRequest || msg != "Invalid or expired token" {
		t.Fatalf("got %d %q", code, msg)
	}
}

func TestErrorHandler_Throttled(t *testing.T) {
	code, _ := handleError(t, domain.ErrResetThrottled)
	if code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}
}

func TestErrorHandler_WrappedDomainError(t *testing.T) {
	wrapped := errors.Join(errors.New("find user by email"), domain.ErrUserNotFound)
	code, msg := handleError(t, wrapped)
	if code != http.StatusNotFound || msg != "User not found" {
		t.Fatalf("wrapped sentinel not resolved: %d %q", code, msg)
	}
}

func TestErrorHandler_EchoHTTPError(t *testing.T) {
	code, msg := handleError(t, echo.NewHTTPError(http.StatusUnauthorized, "invalid token"))
	if code != http.StatusUnauthorized || msg != "invalid token" {
		t.Fatalf("got %d %q", code, msg)
	}
}

func TestErrorHandler_UnknownErrorIsGeneric(t *testing.T) {
	code, msg := handleError(t, errors.New("mongo: socket closed"))
	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", code)
	}
	if msg != "internal server error" {
		t.Fatalf("internal details must not leak: %q", msg)
	}
}
