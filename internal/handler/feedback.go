package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"tutorbook/internal/middleware"
	"tutorbook/internal/model"
	"tutorbook/internal/service"
)

// SetupFeedbackRoutes wires the student feedback endpoints.
func SetupFeedbackRoutes(e *echo.Echo, svc *service.FeedbackService, authMW echo.MiddlewareFunc, logger *zap.Logger) {
	studentOnly := middleware.RequireRole(model.RoleStudent)

	e.POST("/api/sessions/:id/feedback", SubmitFeedback(svc, logger), authMW, studentOnly)
	e.GET("/api/sessions/:id/feedback/me", MyFeedback(svc, logger), authMW, studentOnly)
	e.DELETE("/api/sessions/:id/feedback/me", DeleteFeedback(svc, logger), authMW, studentOnly)
}

func SubmitFeedback(svc *service.FeedbackService, logger *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, _ := middleware.PrincipalFrom(c)

		var in service.FeedbackInput
		if err := bindAndValidate(c, &in); err != nil {
			return respondError(c, logger, err)
		}

		fb, err := svc.Submit(c.Request().Context(), c.Param("id"), p.UserID, in)
		if err != nil {
			return respondError(c, logger, err)
		}

		message := "draft saved"
		if fb.State == model.FeedbackStateSaved {
			message = "feedback submitted"
		}
		return respond(c, http.StatusCreated, fb, message)
	}
}

func MyFeedback(svc *service.FeedbackService, logger *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, _ := middleware.PrincipalFrom(c)

		fb, err := svc.GetMine(c.Request().Context(), c.Param("id"), p.UserID)
		if err != nil {
			return respondError(c, logger, err)
		}
		return respond(c, http.StatusOK, fb, "")
	}
}

func DeleteFeedback(svc *service.FeedbackService, logger *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, _ := middleware.PrincipalFrom(c)

		if err := svc.Delete(c.Request().Context(), c.Param("id"), p.UserID); err != nil {
			return respondError(c, logger, err)
		}
		return respond(c, http.StatusOK, nil, "feedback deleted")
	}
}
