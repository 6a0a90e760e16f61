// Package server is the trusted backend. It keeps the avatar and language
// model credentials and exposes the three calls a client needs.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const scopeName = "github.com/koscakluka/ema-avatar/internal/server"

var logger = otelslog.NewLogger(scopeName)

type TokenIssuer interface {
	CreateToken(ctx context.Context) (string, error)
}

type Completer interface {
	Complete(ctx context.Context, text string) (string, error)
}

type Speaker interface {
	Speak(ctx context.Context, sessionID string, text string) error
}

type Options struct {
	StaticDir string
}

// New creates the echo instance with middleware and all routes registered.
func New(handlers Handlers, options Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(c.Request().Context(), level, "request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			)
			return nil
		},
	}))

	handlers.Register(e)
	if options.StaticDir != "" {
		e.Static("/", options.StaticDir)
	}
	return e
}
