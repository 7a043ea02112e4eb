package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/memohai/avatar/internal/auth"
	"github.com/memohai/avatar/internal/metrics"
)

// Handler registers a group of routes.
type Handler interface {
	Register(e *echo.Echo)
}

type Params struct {
	Logger      *slog.Logger
	Addr        string
	JWTSecret   string
	Metrics     *metrics.Metrics
	MetricsPath string
	Handlers    []Handler
}

type Server struct {
	echo *echo.Echo
	addr string
}

var (
	jwtExactSkipPaths = map[string]struct{}{
		"/ping":           {},
		"/health":         {},
		"/auth/login":     {},
		"/avatars/render": {},
	}
	jwtPrefixSkipPaths = []string{
		"/media/files/",
	}
	optionalAuthPaths = map[string]struct{}{
		"/embed": {},
	}
)

func New(p Params) *Server {
	if p.Addr == "" {
		p.Addr = ":8080"
	}
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	metricsPath := p.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			p.Logger.Info("request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
				slog.String("remote_ip", c.RealIP()),
			)
			return nil
		},
	}))
	if p.Metrics != nil {
		e.Use(p.Metrics.Middleware(func(c echo.Context) bool {
			return c.Request().URL.Path == metricsPath
		}))
		e.GET(metricsPath, echo.WrapHandler(p.Metrics.Handler()))
	}
	e.Use(auth.JWTMiddleware(p.JWTSecret, func(c echo.Context) bool {
		r := c.Request()
		return r.URL.Path == metricsPath || shouldSkipJWT(r.Method, r.URL.Path) || isOptionalAuthPath(r.URL.Path)
	}))
	e.Use(auth.OptionalJWTMiddleware(p.JWTSecret, func(c echo.Context) bool {
		return !isOptionalAuthPath(c.Request().URL.Path)
	}))

	for _, h := range p.Handlers {
		if h != nil {
			h.Register(e)
		}
	}
	return &Server{echo: e, addr: p.Addr}
}

// Echo returns the underlying router, mainly for tests.
func (s *Server) Echo() *echo.Echo { return s.echo }

func (s *Server) Start() error                   { return s.echo.Start(s.addr) }
func (s *Server) Stop(ctx context.Context) error { return s.echo.Shutdown(ctx) }

func shouldSkipJWT(method, path string) bool {
	if _, ok := jwtExactSkipPaths[path]; ok {
		return true
	}
	for _, prefix := range jwtPrefixSkipPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	// GET /avatars/:user_id renders publicly; other /avatars routes need a token.
	if method == http.MethodGet && strings.HasPrefix(path, "/avatars/") {
		return true
	}
	return false
}

func isOptionalAuthPath(path string) bool {
	_, ok := optionalAuthPaths[path]
	return ok
}
