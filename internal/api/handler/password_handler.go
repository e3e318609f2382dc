package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gemquest/identity-api/internal/api/metrics"
	"github.com/gemquest/identity-api/internal/core/ports"
)

// PasswordHandler exposes the reset-token lifecycle over HTTP. Domain errors
// are returned as-is and mapped to status codes by the central error handler.
type PasswordHandler struct {
	resets ports.PasswordResetService
}

func NewPasswordHandler(resets ports.PasswordResetService) *PasswordHandler {
	return &PasswordHandler{resets: resets}
}

type requestResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type setPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// RequestReset issues a password reset token and mails it to the account.
//
// @Summary      Request a password reset token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      requestResetRequest  true  "Account email"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /request-password-reset [post]
func (h *PasswordHandler) RequestReset(c echo.Context) error {
	var req requestResetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.resets.Request(c.Request().Context(), req.Email); err != nil {
		return err
	}

	metrics.ResetTokensIssuedTotal.Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "Password reset token sent"})
}

// SetPassword consumes a reset token and stores the new password.
//
// @Summary      Set a new password using a reset token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      setPasswordRequest  true  "Reset token and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Router       /set-password [post]
func (h *PasswordHandler) SetPassword(c echo.Context) error {
	var req setPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.resets.SetPassword(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		return err
	}

	metrics.ResetTokensConsumedTotal.Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "Password set successfully"})
}
