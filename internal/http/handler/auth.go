package handler

import (
	"errors"
	"net/http"

	"department-service/internal/app"
	"department-service/internal/auth"
	apperrors "department-service/pkg/errors"
	"department-service/pkg/logger"

	"github.com/labstack/echo/v4"
)

const (
	fieldUsername = "username"
	fieldPassword = "password"
)

type AuthHandler struct {
	authenticator Authenticator
	sessions      SessionIssuer
	csrf          CSRFTokens
	pages         *pageBuilder
	cookieSecure  bool
}

func NewAuthHandler(authenticator Authenticator, sessions SessionIssuer, svc DepartmentService, csrf CSRFTokens, csrfField string, flashes *Flashes, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		authenticator: authenticator,
		sessions:      sessions,
		csrf:          csrf,
		pages:         &pageBuilder{svc: svc, csrf: csrf, csrfField: csrfField, flashes: flashes},
		cookieSecure:  cookieSecure,
	}
}

type loginForm struct {
	Username string
	Next     string
	Error    string
}

func (h *AuthHandler) LoginForm(c echo.Context) error {
	return h.renderLogin(c, http.StatusOK, loginForm{Next: c.QueryParam(auth.NextParam)})
}

func (h *AuthHandler) Login(c echo.Context) error {
	form := loginForm{
		Username: c.FormValue(fieldUsername),
		Next:     c.FormValue(auth.NextParam),
	}

	u, err := h.authenticator.Authenticate(c.Request().Context(), form.Username, c.FormValue(fieldPassword))
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			logger.FromContext(c.Request().Context()).Info("login failed", "username", form.Username)
			form.Error = app.MsgInvalidCredentials
			return h.renderLogin(c, http.StatusOK, form)
		}
		return err
	}

	token, err := h.sessions.Generate(u.ID, u.Username)
	if err != nil {
		return err
	}
	auth.SetSessionCookie(c, token, h.sessions.Expiry(), h.cookieSecure)

	logger.FromContext(c.Request().Context()).Info("user logged in", "user_id", u.ID)
	return c.Redirect(http.StatusFound, auth.SafeRedirect(form.Next, pathHome))
}

// Logout ends the session. It sits behind the session middleware, so an
// anonymous caller is already on the way to the login page.
func (h *AuthHandler) Logout(c echo.Context) error {
	if actor, err := auth.GetActor(c); err == nil {
		h.csrf.Forget(actor.UserID)
	}
	auth.ClearSessionCookie(c, h.cookieSecure)
	return c.Redirect(http.StatusFound, auth.LoginPath)
}

func (h *AuthHandler) renderLogin(c echo.Context, status int, form loginForm) error {
	page, err := h.pages.build(c, "Log in", form)
	if err != nil {
		return err
	}
	return c.Render(status, tmplLogin, page)
}
