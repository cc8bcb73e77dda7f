package handler

import (
	"context"
	"net/http"
	"time"

	"department-service/pkg/logger"

	"github.com/labstack/echo/v4"
)

const (
	statusOK          = "ok"
	statusUnavailable = "unavailable"

	healthCheckTimeout = 2 * time.Second
)

type SystemHandler struct {
	db Pinger
}

func NewSystemHandler(db Pinger) *SystemHandler {
	return &SystemHandler{db: db}
}

// Health reports whether the storage backend answers.
func (h *SystemHandler) Health(c echo.Context) error {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
		defer cancel()

		if err := h.db.Ping(ctx); err != nil {
			logger.FromContext(ctx).Error("health check failed", "error", err)
			return c.JSON(http.StatusServiceUnavailable, map[string]string{jsonKeyStatus: statusUnavailable})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{jsonKeyStatus: statusOK})
}
