package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aqui-app/aqui-api/internal/service"
	"github.com/aqui-app/aqui-api/internal/util"
)

type sessionSweeper interface {
	Sweep(ctx context.Context) (service.SweepResult, error)
}

// RegisterInternal mounts endpoints meant for the scheduler, not for clients.
func RegisterInternal(e *echo.Echo, cronSecret string, sweeper sessionSweeper) {
	g := e.Group("/api/v1/internal", RequireCronSecret(cronSecret))
	g.POST("/live-sessions/sweep", func(c echo.Context) error {
		result, err := sweeper.Sweep(c.Request().Context())
		if err != nil {
			c.Logger().Errorf("sweep live sessions: %v", err)
			return c.JSON(http.StatusInternalServerError, util.Error("internal server error"))
		}
		return c.JSON(http.StatusOK, result)
	})
}
