// Package mockbackend is a self-contained stand-in for the chat backend,
// used for local development and end-to-end tests of the client.
package mockbackend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/bcrypt"
)

// Config configures a Server.
type Config struct {
	Addr     string
	Database string
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	Logger     *slog.Logger
}

// Server serves the chat API from a SQLite database.
type Server struct {
	cfg  Config
	db   *DB
	echo *echo.Echo
	log  *slog.Logger
}

// New opens the database and registers routes.
func New(cfg Config) (*Server, error) {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	db, err := OpenDB(cfg.Database)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	s := &Server{cfg: cfg, db: db, echo: e, log: cfg.Logger}
	e.Use(s.requestLogger)
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	auth := s.echo.Group("/api/auth")
	auth.POST("/login", s.login)
	auth.POST("/register", s.register)
	auth.POST("/logout", s.logout)
	auth.GET("/profile", s.profile)

	chat := s.echo.Group("/api/chat")
	chat.GET("/list", s.listChats)
	chat.GET("/messages", s.chatMessages)
	chat.POST("/create", s.createChat)
	chat.POST("/send", s.sendMessage)
	chat.GET("/models", s.listModels)

	s.echo.POST("/api/rag/answer", s.ragAnswer)
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		s.log.Debug("mock request",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"status", c.Response().Status,
			"request_id", c.Request().Header.Get(echo.HeaderXRequestID),
			"duration", time.Since(start))
		return nil
	}
}

// Handler exposes the router, e.g. for httptest.
func (s *Server) Handler() http.Handler { return s.echo }

// Start serves on cfg.Addr until Shutdown.
func (s *Server) Start() error {
	s.log.Info("mock backend listening", "addr", s.cfg.Addr, "database", s.cfg.Database)
	if err := s.echo.Start(s.cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("mock backend: %w", err)
	}
	return nil
}

// Shutdown stops the listener and closes the database.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.echo.Shutdown(ctx)
	if cerr := s.db.Close(); err == nil {
		err = cerr
	}
	return err
}

// Close releases the database without touching the listener.
func (s *Server) Close() error { return s.db.Close() }

// cannedReply is the mock's assistant answer.
func cannedReply(question, model string) string {
	if model == "" {
		model = "default model"
	}
	return fmt.Sprintf("(mock answer from %s) You asked: %s", model, strings.TrimSpace(question))
}

func fail(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, map[string]any{"ok": false, "message": msg})
}
