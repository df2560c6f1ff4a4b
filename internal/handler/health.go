package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// SetupHealthRoute exposes the unauthenticated liveness probe.
func SetupHealthRoute(e *echo.Echo) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":    "OK",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
}
