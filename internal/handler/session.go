package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"tutorbook/internal/apperr"
	"tutorbook/internal/middleware"
	"tutorbook/internal/model"
	"tutorbook/internal/service"
)

// SetupSessionRoutes wires the session lifecycle endpoints. Listing and
// detail are open to every authenticated user; mutations are tutor-only.
func SetupSessionRoutes(e *echo.Echo, sessions *service.SessionService, registrations *service.RegistrationService, authMW echo.MiddlewareFunc, logger *zap.Logger) {
	g := e.Group("/api/sessions", authMW)

	g.GET("", ListSessions(sessions, logger))
	g.GET("/:id", GetSession(sessions, logger))
	g.POST("", CreateSession(sessions, logger), middleware.RequireRole(model.RoleTutor))
	g.PATCH("/:id", UpdateSession(sessions, logger), middleware.RequireRole(model.RoleTutor))
	g.DELETE("/:id", CancelSession(sessions, logger), middleware.RequireRole(model.RoleTutor))
	g.GET("/:id/registrations", SessionRegistrations(registrations, logger), middleware.RequireRole(model.RoleTutor))
}

func ListSessions(svc *service.SessionService, logger *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, _ := middleware.PrincipalFrom(c)

		q := service.ListSessionsQuery{
			Subject: c.QueryParam("subject"),
			TutorID: c.QueryParam("tutorId"),
		}
		if c.QueryParam("mine") == "true" && p.Role == model.RoleTutor {
			q.TutorID = p.UserID
		}
		if statuses := c.QueryParam("status"); statuses != "" {
			for _, s := range strings.Split(statuses, ",") {
				q.Statuses = append(q.Statuses, model.SessionStatus(s))
			}
		}

		sessions, err := svc.List(c.Request().Context(), q)
		if err != nil {
			return respondError(c, logger, err)
		}
		return respond(c, http.StatusOK, sessions, "")
	}
}

func GetSession(svc *service.SessionService, logger *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := svc.Get(c.Request().Context(), c.Param("id"))
		if err != nil {
			return respondError(c, logger, err)
		}
		return respond(c, http.StatusOK, sess, "")
	}
}

func CreateSession(svc *service.SessionService, logger *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, _ := middleware.PrincipalFrom(c)

		var in service.CreateSessionInput
		if err := bindAndValidate(c, &in); err != nil {
			return respondError(c, logger, err)
		}

		sess, err := svc.Create(c.Request().Context(), p.UserID, in)
		if err != nil {
			return respondError(c, logger, err)
		}
		return respond(c, http.StatusCreated, sess, "session created")
	}
}

func UpdateSession(svc *service.SessionService, logger *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, _ := middleware.PrincipalFrom(c)

		var in service.UpdateSessionInput
		if err := bindAndValidate(c, &in); err != nil {
			return respondError(c, logger, err)
		}

		sess, err := svc.Update(c.Request().Context(), c.Param("id"), p.UserID, in)
		if err != nil {
			return respondError(c, logger, err)
		}
		return respond(c, http.StatusOK, sess, "session updated")
	}
}

func CancelSession(svc *service.SessionService, logger *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, _ := middleware.PrincipalFrom(c)

		if err := svc.Cancel(c.Request().Context(), c.Param("id"), p.UserID); err != nil {
			return respondError(c, logger, err)
		}
		return respond(c, http.StatusOK, nil, "session cancelled")
	}
}

func SessionRegistrations(svc *service.RegistrationService, logger *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, _ := middleware.PrincipalFrom(c)

		regs, err := svc.ListForSession(c.Request().Context(), c.Param("id"), p.UserID)
		if err != nil {
			return respondError(c, logger, err)
		}
		return respond(c, http.StatusOK, regs, "")
	}
}

func bindAndValidate(c echo.Context, in any) error {
	if err := c.Bind(in); err != nil {
		return apperr.New(apperr.CodeValidation, "malformed request body")
	}
	if err := c.Validate(in); err != nil {
		return apperr.New(apperr.CodeValidation, err.Error())
	}
	return nil
}
