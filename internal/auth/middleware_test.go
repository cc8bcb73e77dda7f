package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"department-service/internal/app"
	"department-service/internal/authz"
	"department-service/internal/domain/profile"
	apperrors "department-service/pkg/errors"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver map[int64]app.Actor

func (f fakeResolver) ResolveActor(_ context.Context, userID int64) (app.Actor, error) {
	a, ok := f[userID]
	if !ok {
		return app.Actor{}, apperrors.NotFound("user not found")
	}
	return a, nil
}

func newTestMiddleware() (*Middleware, *JWTService) {
	jwtSvc := NewJWTService(testSecret, time.Hour)
	resolver := fakeResolver{
		1: {UserID: 1, Username: "erin", Profile: profile.Profile{ID: 10, UserID: 1, Role: profile.RoleEmployee}},
		2: {UserID: 2, Username: "root", Profile: profile.Profile{ID: 20, UserID: 2, Role: profile.RoleAdmin}},
	}
	return NewMiddleware(jwtSvc, resolver, false), jwtSvc
}

func serve(t *testing.T, h echo.HandlerFunc, mw []echo.MiddlewareFunc, cookie string, target string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.GET("/*", h, mw...)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: cookie})
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func whoAmI(c echo.Context) error {
	actor, err := GetActor(c)
	if err != nil {
		return err
	}
	return c.String(http.StatusOK, actor.Username)
}

func TestRequirePage(t *testing.T) {
	mw, jwtSvc := newTestMiddleware()

	t.Run("anonymous is redirected to login", func(t *testing.T) {
		rec := serve(t, whoAmI, []echo.MiddlewareFunc{mw.RequirePage()}, "", "/assign/")
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login/?next=%2Fassign%2F", rec.Header().Get(echo.HeaderLocation))
	})

	t.Run("valid session", func(t *testing.T) {
		token, err := jwtSvc.Generate(1, "erin")
		require.NoError(t, err)
		rec := serve(t, whoAmI, []echo.MiddlewareFunc{mw.RequirePage()}, token, "/")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "erin", rec.Body.String())
	})

	t.Run("deleted user", func(t *testing.T) {
		token, err := jwtSvc.Generate(99, "ghost")
		require.NoError(t, err)
		rec := serve(t, whoAmI, []echo.MiddlewareFunc{mw.RequirePage()}, token, "/")
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Contains(t, rec.Header().Get(echo.HeaderSetCookie), SessionCookieName+"=;")
	})
}

func TestRequireAPI(t *testing.T) {
	mw, _ := newTestMiddleware()

	rec := serve(t, whoAmI, []echo.MiddlewareFunc{mw.RequireAPI()}, "tampered", "/tasks/1/")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Authentication required"}`, rec.Body.String())
}

func TestRequireCapability(t *testing.T) {
	mw, jwtSvc := newTestMiddleware()
	policy := authz.NewDepartment()
	chain := []echo.MiddlewareFunc{mw.RequireAPI(), RequireCapability(policy.CanViewMetrics)}

	adminToken, err := jwtSvc.Generate(2, "root")
	require.NoError(t, err)
	rec := serve(t, whoAmI, chain, adminToken, "/metrics/requests")
	assert.Equal(t, http.StatusOK, rec.Code)

	employeeToken, err := jwtSvc.Generate(1, "erin")
	require.NoError(t, err)
	rec = serve(t, whoAmI, chain, employeeToken, "/metrics/requests")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"Permission denied"}`, rec.Body.String())
}
