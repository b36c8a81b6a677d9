// main.go - Entry point for the ragchat terminal client.
// Handles logging setup and graceful shutdown; the command tree lives in commands.go.

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"ragchat/src/config"

	tea "github.com/charmbracelet/bubbletea"
)

// =====================================================================================
// 🚀 Application Entry Point
// =====================================================================================

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// =====================================================================================
// 📝 Logging
// =====================================================================================

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// setupLogging installs the default slog logger. The TUI owns the terminal,
// so unless toStderr is set the handler writes to cfg.File.
func setupLogging(cfg config.LogConfig, verbose, toStderr bool) (*slog.Logger, io.Closer, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q", cfg.Level)
	}
	if verbose {
		level = slog.LevelDebug
	}

	var (
		w      io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if !toStderr && cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o700); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w, closer = f, f
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger, closer, nil
}

// =====================================================================================
// 🛡️ Graceful Shutdown
// =====================================================================================

// setupGracefulShutdown quits the program on SIGINT/SIGTERM. The returned
// func stops listening once the program has exited.
func setupGracefulShutdown(program *tea.Program, cancel context.CancelFunc, logger *slog.Logger) func() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		if _, ok := <-c; !ok {
			return
		}
		logger.Info("Received shutdown signal, cleaning up...")
		cancel()
		program.Quit()
	}()

	return func() {
		signal.Stop(c)
		close(c)
	}
}
