package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gemquest/identity-api/internal/core/domain"
)

// ProfileHandler serves identity introspection for authenticated callers.
type ProfileHandler struct{}

func NewProfileHandler() *ProfileHandler {
	return &ProfileHandler{}
}

type profileResponse struct {
	UserID      string              `json:"user_id"`
	Role        string              `json:"role"`
	Permissions []domain.Permission `json:"permissions"`
}

// Me returns the verified identity claim of the current request plus the
// permissions its role grants.
//
// @Summary      Current identity
// @Tags         auth
// @Produce      json
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  map[string]string
// @Security     BearerAuth
// @Router       /me [get]
func (h *ProfileHandler) Me(c echo.Context) error {
	userID, role, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, profileResponse{
		UserID:      userID,
		Role:        role,
		Permissions: domain.RolePermissions[role],
	})
}
