// Package httpapi exposes the reader and library services as a JSON API.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/example/gamebook/internal/ports/primary"
)

// Options tune the server.
type Options struct {
	// ImageRoot serves /books/book-XXXXXXXX/images/* from this directory when set.
	ImageRoot string
}

// Server is the HTTP presentation surface.
type Server struct {
	echo    *echo.Echo
	reader  primary.ReaderService
	library primary.LibraryService
	opts    Options
	logger  *zap.Logger
}

// NewServer builds the echo instance and registers every route.
func NewServer(reader primary.ReaderService, library primary.LibraryService, opts Options, logger *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:    e,
		reader:  reader,
		library: library,
		opts:    opts,
		logger:  logger.Named("HTTPServer"),
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(ZapLogger(s.logger))
	e.Use(Metrics())

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/healthz", s.healthz)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	books := s.echo.Group("/books")
	books.GET("", s.listBooks)
	books.GET("/:bookId/content", s.getBookContent)
	if s.opts.ImageRoot != "" {
		books.GET("/:bookId/images/:file", s.serveImage)
	}

	sessions := s.echo.Group("/sessions", RequireReader())
	sessions.GET("/:bookId", s.getSession)
	sessions.POST("/:bookId/choices", s.choose)
	sessions.POST("/:bookId/restart", s.restart)
	sessions.POST("/:bookId/close", s.closeSession)
	sessions.POST("/:bookId/images/:imageId/failed", s.reportImageFailure)
	sessions.GET("/:bookId/progress", s.getProgress)
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.logger.Info("HTTP server listening", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
