package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"tutorbook/internal/middleware"
	"tutorbook/internal/model"
	"tutorbook/internal/service"
)

// SetupRegistrationRoutes wires the student-only registration endpoints.
func SetupRegistrationRoutes(e *echo.Echo, svc *service.RegistrationService, authMW echo.MiddlewareFunc, logger *zap.Logger) {
	studentOnly := middleware.RequireRole(model.RoleStudent)

	e.POST("/api/sessions/:id/register", Register(svc, logger), authMW, studentOnly)
	e.DELETE("/api/sessions/:id/register", Unregister(svc, logger), authMW, studentOnly)
	e.GET("/api/registrations/me", MyRegistrations(svc, logger), authMW, studentOnly)
}

func Register(svc *service.RegistrationService, logger *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, _ := middleware.PrincipalFrom(c)

		reg, err := svc.Register(c.Request().Context(), c.Param("id"), p.UserID)
		if err != nil {
			return respondError(c, logger, err)
		}
		return respond(c, http.StatusCreated, reg, "registered")
	}
}

func Unregister(svc *service.RegistrationService, logger *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, _ := middleware.PrincipalFrom(c)

		if err := svc.Unregister(c.Request().Context(), c.Param("id"), p.UserID); err != nil {
			return respondError(c, logger, err)
		}
		return respond(c, http.StatusOK, nil, "registration cancelled")
	}
}

func MyRegistrations(svc *service.RegistrationService, logger *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, _ := middleware.PrincipalFrom(c)

		regs, err := svc.ListMine(c.Request().Context(), p.UserID)
		if err != nil {
			return respondError(c, logger, err)
		}
		return respond(c, http.StatusOK, regs, "")
	}
}
