package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gemquest/identity-api/internal/api/metrics"
	"github.com/gemquest/identity-api/internal/core/domain"
)

// PermissionOptions declares the access constraints for a single route.
// Both fields are optional; a zero value allows any authenticated caller.
// Options are fixed at route registration and never mutated afterwards.
type PermissionOptions struct {
	Roles       []string
	Permissions []domain.Permission
}

// Authorize returns a guard closed over opts. It assumes Auth has already
// run and placed the identity claim in context.
//
// The role check runs strictly before the permission check: when both are
// configured and the role already fails, the denial is role-based and the
// permission set is never consulted.
func Authorize(opts PermissionOptions) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(opts.Roles))
	for _, r := range opts.Roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)

			if len(allowed) > 0 {
				if _, ok := allowed[role]; !ok {
					metrics.AuthzDeniedTotal.WithLabelValues("role").Inc()
					return c.JSON(http.StatusForbidden, map[string]string{"error": "Forbidden"})
				}
			}

			if len(opts.Permissions) > 0 && !domain.HasPermissions(role, opts.Permissions) {
				metrics.AuthzDeniedTotal.WithLabelValues("permission").Inc()
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Insufficient permissions"})
			}

			return next(c)
		}
	}
}
