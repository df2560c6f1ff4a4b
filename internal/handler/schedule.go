package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"tutorbook/internal/middleware"
	"tutorbook/internal/schedule"
	"tutorbook/internal/service"
)

// SetupScheduleRoutes wires the weekly board image endpoint.
func SetupScheduleRoutes(e *echo.Echo, sessions *service.SessionService, board schedule.WeekBoard, authMW echo.MiddlewareFunc, logger *zap.Logger) {
	e.GET("/api/me/schedule.png", WeekImage(sessions, board, logger), authMW)
}

// WeekImage renders the caller's current week as a PNG: owned sessions for
// tutors, registered sessions for students.
func WeekImage(svc *service.SessionService, board schedule.WeekBoard, logger *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, _ := middleware.PrincipalFrom(c)

		sessions, err := svc.WeekFor(c.Request().Context(), p.UserID, p.Role)
		if err != nil {
			return respondError(c, logger, err)
		}

		png, err := board.Render(sessions, time.Now())
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.Blob(http.StatusOK, "image/png", png)
	}
}
