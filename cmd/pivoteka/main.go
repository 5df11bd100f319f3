package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/erazemk/pivoteka/internal/api"
	"github.com/erazemk/pivoteka/internal/config"
	"github.com/erazemk/pivoteka/internal/db"
)

// levelRouter splits slog output by level: ERROR and above go to stderr,
// everything else to stdout.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger installs the default slog logger with level-routed output.
// When logPath is set, every level is also teed into that file; the returned
// cleanup closes it.
func setupLogger(logPath string) (func(), error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var cleanup func()

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	handler := &levelRouter{
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := config.Default()
	var cfgPath string

	root := &cobra.Command{
		Use:     "pivoteka",
		Short:   "HTTP service for cataloguing tasted beers",
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		Example: `  pivoteka --db /var/lib/pivoteka/beers.sqlite3 --addr :8080
  pivoteka --config $HOME/.pivoteka/config.toml`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Flags beat environment beats file beats defaults.
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			path := config.Path(cfgPath)
			if path != "" {
				if err := config.ApplyFile(&cfg, path, changed); err != nil {
					return err
				}
			}
			config.ApplyEnv(&cfg, changed)

			return serve(cfg)
		},
	}

	root.Flags().StringVarP(&cfg.Addr, "addr", "a", cfg.Addr, "listen address")
	root.Flags().StringVarP(&cfg.DBPath, "db", "d", cfg.DBPath, "SQLite database path")
	root.Flags().StringVarP(&cfg.LogPath, "log", "l", cfg.LogPath, "log file path (stdout/stderr only if empty)")
	root.Flags().StringVarP(&cfgPath, "config", "c", "", "config file path (default: ~/.pivoteka/config.toml)")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve(cfg config.Config) error {
	closeLog, err := setupLogger(cfg.LogPath)
	if err != nil {
		return err
	}
	if closeLog != nil {
		defer closeLog()
	}

	// Open the database, creating the schema on first run.
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	if err := db.EnsureSchema(database); err != nil {
		return fmt.Errorf("ensuring database schema: %w", err)
	}

	slog.Info("database ready", "path", cfg.DBPath)

	router, err := api.NewRouter(database)
	if err != nil {
		return fmt.Errorf("setting up router: %w", err)
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}
