package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/safeschool/drillready/core/account"
)

// adminMiddleware gates a route to authenticated admins.
func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.Role == account.RoleAdmin {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
