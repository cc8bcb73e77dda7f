package auth

import (
	"context"
	"net/http"

	"department-service/internal/app"
	apperrors "department-service/pkg/errors"
	"department-service/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ActorResolver turns a session's user id into the acting profile.
type ActorResolver interface {
	ResolveActor(ctx context.Context, userID int64) (app.Actor, error)
}

type Middleware struct {
	jwtService   *JWTService
	resolver     ActorResolver
	cookieSecure bool
}

func NewMiddleware(jwtService *JWTService, resolver ActorResolver, cookieSecure bool) *Middleware {
	return &Middleware{
		jwtService:   jwtService,
		resolver:     resolver,
		cookieSecure: cookieSecure,
	}
}

// RequirePage guards HTML pages: anonymous visitors are redirected to the
// login page.
func (m *Middleware) RequirePage() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := m.authenticate(c); err != nil {
				if !isSessionError(err) {
					return err
				}
				ClearSessionCookie(c, m.cookieSecure)
				return c.Redirect(http.StatusFound, LoginURL(c.Request().URL.RequestURI()))
			}
			return next(c)
		}
	}
}

// RequireAPI guards JSON endpoints with a 401 instead of a redirect.
func (m *Middleware) RequireAPI() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := m.authenticate(c); err != nil {
				if !isSessionError(err) {
					return err
				}
				return respondError(c, http.StatusUnauthorized, msgNotAuthenticated)
			}
			return next(c)
		}
	}
}

func (m *Middleware) authenticate(c echo.Context) error {
	token := sessionToken(c)
	if token == "" {
		return apperrors.Unauthorized(msgNotAuthenticated)
	}

	claims, err := m.jwtService.Verify(token)
	if err != nil {
		return apperrors.Unauthorized(msgNotAuthenticated)
	}

	req := c.Request()
	actor, err := m.resolver.ResolveActor(req.Context(), claims.UserID)
	if err != nil {
		return err
	}

	c.Set(ContextKeyActor, actor)
	log := logger.FromContext(req.Context()).With("user_id", actor.UserID, "role", actor.Profile.Role)
	c.SetRequest(req.WithContext(logger.WithContext(req.Context(), log)))
	return nil
}

// isSessionError is true when the session no longer maps to an active user.
func isSessionError(err error) bool {
	return apperrors.IsUnauthorized(err) || apperrors.IsNotFound(err)
}

func GetActor(c echo.Context) (app.Actor, error) {
	v := c.Get(ContextKeyActor)
	if v == nil {
		return app.Actor{}, apperrors.Unauthorized(msgActorMissing)
	}

	actor, ok := v.(app.Actor)
	if !ok {
		return app.Actor{}, apperrors.InternalServer(msgInvalidActorCtx, nil)
	}

	return actor, nil
}

func respondError(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{jsonKeyError: message})
}
