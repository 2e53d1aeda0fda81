package api

import (
	"context"
	"errors"
	"fmt"
	sessionstorage "github.com/burenotti/nutrition_counselling/internal/adapter/storage/sessions"
	"github.com/burenotti/nutrition_counselling/internal/adapter/telemetry"
	metabolicservice "github.com/burenotti/nutrition_counselling/internal/app/metabolic"
	sessionapp "github.com/burenotti/nutrition_counselling/internal/app/session"
	"github.com/burenotti/nutrition_counselling/internal/app/unitofwork"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"
	"log/slog"
	"time"
)

type Server struct {
	handler          *echo.Echo
	logger           *slog.Logger
	addr             string
	sessions         *sessionstorage.MemoryStorage
	metabolicService *metabolicservice.Service
	sessionService   *sessionapp.Service
	metrics          *telemetry.Metrics
	msgBus           unitofwork.MessageBus
	allowedOrigins   []string
	validator        *validator.Validate
}

type Timeouts struct {
	Read       time.Duration
	Write      time.Duration
	Idle       time.Duration
	ReadHeader time.Duration
}

var defaultTimeouts = Timeouts{
	Read:       10 * time.Second,
	Write:      10 * time.Second,
	Idle:       10 * time.Second,
	ReadHeader: 5 * time.Second,
}

func NewServer(opt ...Option) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Server.MaxHeaderBytes = 4096
	applyTimeouts(e, defaultTimeouts)

	v := validator.New(validator.WithRequiredStructEnabled())

	s := &Server{
		handler:   e,
		logger:    slog.Default(),
		sessions:  sessionstorage.NewMemoryStorage(),
		validator: v,
	}

	for _, opt := range opt {
		opt(s)
	}

	e.Use(slogecho.NewWithConfig(s.logger, slogecho.Config{
		DefaultLevel:     slog.LevelInfo,
		ClientErrorLevel: slog.LevelInfo,
		ServerErrorLevel: slog.LevelError,
		WithRequestID:    true,
		WithSpanID:       true,
		WithTraceID:      true,
	}))
	e.Use(middleware.Recover())
	if len(s.allowedOrigins) != 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: s.allowedOrigins,
		}))
	}
	s.Mount()
	return s
}

func (s *Server) Mount() {
	s.MountSessions()
	s.MountCounsellings()
	if s.metrics != nil {
		s.handler.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}
}

func (s *Server) Start() error {
	return s.handler.Start(s.addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.handler.Shutdown(ctx)
}

func (s *Server) bind(ctx echo.Context, i interface{}) error {
	if err := ctx.Bind(i); err != nil {
		return fmt.Errorf("bad request")
	}
	if err := s.validator.Struct(i); err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) {
			return fmt.Errorf("bad request")
		}
		return fmt.Errorf("%s: %s", errs[0].Field(), errs[0].Error())

	}
	return nil
}

func applyTimeouts(e *echo.Echo, t Timeouts) {
	e.Server.ReadTimeout = t.Read
	e.Server.WriteTimeout = t.Write
	e.Server.IdleTimeout = t.Idle
	e.Server.ReadHeaderTimeout = t.ReadHeader
}
