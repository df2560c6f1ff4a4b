package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"tutorbook/internal/config"
	"tutorbook/internal/handler"
	"tutorbook/internal/middleware"
	"tutorbook/internal/repository"
	"tutorbook/internal/schedule"
	"tutorbook/internal/service"
)

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

// Server is the assembled HTTP application.
type Server struct {
	echo   *echo.Echo
	addr   string
	logger *zap.Logger
}

// NewServer wires the services onto an echo instance.
func NewServer(cfg *config.Config, store repository.Store, logger *zap.Logger) (*Server, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	hours := schedule.DefaultHours(loc)

	sessions := service.NewSessionService(store, hours, logger)
	registrations := service.NewRegistrationService(store, hours, logger)
	feedback := service.NewFeedbackService(store, logger)

	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: validator.New()}
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	authMW := middleware.Authenticate(cfg.JWTSecret)

	handler.SetupHealthRoute(e)
	handler.SetupSessionRoutes(e, sessions, registrations, authMW, logger)
	handler.SetupRegistrationRoutes(e, registrations, authMW, logger)
	handler.SetupFeedbackRoutes(e, feedback, authMW, logger)
	handler.SetupScheduleRoutes(e, sessions, schedule.WeekBoard{Hours: hours}, authMW, logger)

	return &Server{echo: e, addr: cfg.HTTPAddr, logger: logger}, nil
}

func (s *Server) Start() error {
	s.logger.Info("http server listening", zap.String("addr", s.addr))
	if err := s.echo.Start(s.addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
