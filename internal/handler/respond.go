// Package handler exposes the HTTP surface. Responses use the same JSON
// envelope for every route: {success, data, message} on the happy path and
// {success: false, error: {code, message, details}} on failure.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"tutorbook/internal/apperr"
)

type envelope struct {
	Success bool          `json:"success"`
	Data    any           `json:"data,omitempty"`
	Message string        `json:"message,omitempty"`
	Error   *apperr.Error `json:"error,omitempty"`
}

func respond(c echo.Context, status int, data any, message string) error {
	return c.JSON(status, envelope{Success: true, Data: data, Message: message})
}

// respondError translates service errors to the wire. Anything without an
// apperr code is an internal failure: logged and masked as SERVER_ERROR.
func respondError(c echo.Context, logger *zap.Logger, err error) error {
	if ae, ok := apperr.As(err); ok {
		return c.JSON(apperr.HTTPStatus(ae.Code), envelope{Error: ae})
	}

	logger.Error("request failed",
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.JSON(http.StatusInternalServerError, envelope{
		Error: apperr.New(apperr.CodeServer, "something went wrong"),
	})
}
