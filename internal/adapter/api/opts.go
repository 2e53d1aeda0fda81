package api

import (
	sessionstorage "github.com/burenotti/nutrition_counselling/internal/adapter/storage/sessions"
	"github.com/burenotti/nutrition_counselling/internal/adapter/telemetry"
	metabolicservice "github.com/burenotti/nutrition_counselling/internal/app/metabolic"
	sessionapp "github.com/burenotti/nutrition_counselling/internal/app/session"
	"github.com/burenotti/nutrition_counselling/internal/app/unitofwork"
	"log/slog"
	"net"
	"strconv"
)

type Option func(*Server)

func Addr(host string, port int) Option {
	return func(s *Server) {
		s.addr = net.JoinHostPort(host, strconv.Itoa(port))
	}
}

func Logger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

func SessionStorage(st *sessionstorage.MemoryStorage) Option {
	return func(s *Server) {
		s.sessions = st
	}
}

func MetabolicService(service *metabolicservice.Service) Option {
	return func(s *Server) {
		s.metabolicService = service
	}
}

func SessionService(service *sessionapp.Service) Option {
	return func(s *Server) {
		s.sessionService = service
	}
}

func MessageBus(bus unitofwork.MessageBus) Option {
	return func(s *Server) {
		s.msgBus = bus
	}
}

func Metrics(m *telemetry.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// AllowOrigins enables CORS for the pages that embed the card.
func AllowOrigins(origins ...string) Option {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

func ServerTimeouts(t Timeouts) Option {
	return func(s *Server) {
		applyTimeouts(s.handler, t)
	}
}
