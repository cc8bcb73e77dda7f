package handler

import (
	"net/http"
	"strconv"

	apperrors "department-service/pkg/errors"

	"github.com/labstack/echo/v4"
)

const (
	jsonKeyError  = "error"
	jsonKeyStatus = "status"
	jsonKeyTasks  = "tasks"

	pathHome    = "/"
	pathProfile = "/profile/"
	pathAssign  = "/assign/"
)

func respondError(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{jsonKeyError: message})
}

// pathID parses a numeric path parameter. Anything else is a 404, the same
// answer a missing row gets.
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, msgNotFound)
	}
	return id, nil
}

// recoverOutcome turns expected service outcomes into a flash and a
// redirect: denials go to the listing, validation problems back to
// retry. Anything else is left to the HTTP error handler.
func (f *Flashes) recoverOutcome(c echo.Context, err error, retry string) error {
	switch {
	case apperrors.IsForbidden(err):
		return f.redirect(c, FlashError, apperrors.UserMessage(err, msgPermissionDenied), pathHome)
	case apperrors.IsValidation(err):
		return f.redirect(c, FlashError, apperrors.UserMessage(err, msgInvalidInput), retry)
	default:
		return err
	}
}
