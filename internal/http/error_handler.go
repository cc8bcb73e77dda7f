package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"department-service/internal/auth"
	"department-service/internal/http/handler"
	"department-service/internal/http/middleware"
	apperrors "department-service/pkg/errors"
	"department-service/pkg/logger"

	"github.com/labstack/echo/v4"
)

const (
	jsonPathPrefix    = "/tasks/"
	metricsPathPrefix = "/metrics/"
)

type errorPage struct {
	Code    int
	Message string
}

// CustomHTTPErrorHandler handles all errors returned by handlers and middleware.
// It maps sentinel errors to appropriate HTTP status codes, sanitizes internal errors,
// and logs errors with request context.
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Internal server error"

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		message = fmt.Sprintf("%v", httpErr.Message)
	} else {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			code = http.StatusNotFound
			message = "Not found"
		case errors.Is(err, apperrors.ErrUnauthorized):
			code = http.StatusUnauthorized
			message = "Unauthorized"
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			code = http.StatusUnauthorized
			message = "Invalid credentials"
		case errors.Is(err, apperrors.ErrForbidden):
			code = http.StatusForbidden
			message = "Permission denied"
		case errors.Is(err, apperrors.ErrValidation):
			code = http.StatusBadRequest
			message = "Bad request"
		case errors.Is(err, apperrors.ErrConflict):
			code = http.StatusConflict
			message = "Resource already exists"
		case errors.Is(err, apperrors.ErrUnavailable):
			code = http.StatusServiceUnavailable
			message = "Service unavailable"
		}

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && code < http.StatusInternalServerError {
			message = appErr.Message
		}
	}

	requestID := middleware.GetRequestID(c)
	if requestID == "" {
		requestID = "unknown"
	}

	log := logger.FromContext(c.Request().Context())
	if code >= http.StatusInternalServerError {
		log.Error("internal_server_error", "status", code, "error", err.Error())
		message = "Internal server error"
	} else {
		log.Warn("client_error", "status", code, "error", err.Error())
	}

	if code == http.StatusUnauthorized && !wantsJSON(c) {
		if err := c.Redirect(http.StatusFound, auth.LoginURL(c.Request().URL.RequestURI())); err != nil {
			log.Error("failed to redirect", "error", err)
		}
		return
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else if wantsJSON(c) {
		err = c.JSON(code, map[string]interface{}{
			"error":      message,
			"request_id": requestID,
		})
	} else {
		err = c.Render(code, handler.TmplError, &handler.Page{
			Title: http.StatusText(code),
			Data:  errorPage{Code: code, Message: message},
		})
	}
	if err != nil {
		log.Error("failed to write error response", "error", err)
	}
}

func wantsJSON(c echo.Context) bool {
	p := c.Request().URL.Path
	if strings.HasPrefix(p, jsonPathPrefix) || strings.HasPrefix(p, metricsPathPrefix) {
		return true
	}
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}
