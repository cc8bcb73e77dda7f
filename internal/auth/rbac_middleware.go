package auth

import (
	"net/http"

	"department-service/internal/domain/profile"

	"github.com/labstack/echo/v4"
)

// Check is a policy decision about the acting profile, such as
// authz.Policy.CanViewMetrics.
type Check func(actor profile.Profile) error

// RequireCapability answers 403 unless check allows the actor. It must run
// after RequirePage or RequireAPI.
func RequireCapability(check Check) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, err := GetActor(c)
			if err != nil {
				return respondError(c, http.StatusUnauthorized, msgNotAuthenticated)
			}
			if err := check(actor.Profile); err != nil {
				return respondError(c, http.StatusForbidden, msgPermissionDenied)
			}
			return next(c)
		}
	}
}
