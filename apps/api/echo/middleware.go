package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chama/core/auth"
)

// requireCapability guards a route group behind a role capability.
// The role is read from the JWT claims.
func requireCapability(capability string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if auth.RoleHasCapability(claims.Role, capability) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
