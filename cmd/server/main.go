package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/me/wisched/internal/config"
	"github.com/me/wisched/internal/logging"
	"github.com/me/wisched/internal/monitor"
	"github.com/me/wisched/internal/server"
	"github.com/me/wisched/internal/store"
	"github.com/me/wisched/internal/telemetry"
)

func main() {
	cfg := config.DefaultServerConfig()

	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	flag.StringVar(&cfg.TelemetryAddr, "telemetry-addr", cfg.TelemetryAddr, "TCP telemetry listen address (empty to disable)")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json)")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Database path (default ~/.wisched/wisched.db)")
	taskSet := flag.String("tasks", "", "YAML task-set file registering task classes for the monitor")
	debug := flag.Bool("debug", false, "Shorthand for --log-level=debug")

	flag.Parse()

	if *debug {
		cfg.LogLevel = "debug"
	}

	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	// Resolve database path.
	dbPath := cfg.DBPath
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot determine home directory: %v\n", err)
			os.Exit(1)
		}
		dir := filepath.Join(home, ".wisched")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "cannot create %s: %v\n", dir, err)
			os.Exit(1)
		}
		dbPath = filepath.Join(dir, "wisched.db")
	}

	// Open store and run migrations.
	st, err := store.NewSQLiteStore(dbPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open database: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := st.Migrate(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "migrate database: %v\n", err)
		os.Exit(1)
	}
	logger.Info("database ready", "path", dbPath)

	// The monitoring session scores jobs by traffic class when a task set is
	// registered; unknown tasks fall back to the delay-sensitive curve.
	simCfg := config.DefaultSimConfig()
	if *taskSet != "" {
		simCfg, err = config.LoadSimConfig(*taskSet)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load task set: %v\n", err)
			os.Exit(1)
		}
	}
	tasks, err := simCfg.BuildTasks()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build task set: %v\n", err)
		os.Exit(1)
	}
	taskInfo := make(map[string]monitor.TaskInfo, len(tasks))
	for _, t := range tasks {
		taskInfo[t.Name] = monitor.TaskInfo{Deadline: t.Deadline, Class: t.Class}
	}
	session := monitor.NewSession(taskInfo, logger)

	// Optional TCP telemetry listener for external devices.
	var listener *telemetry.Listener
	if cfg.TelemetryAddr != "" {
		listener = telemetry.NewListener(session, logger)
		if err := listener.Start(cfg.TelemetryAddr); err != nil {
			fmt.Fprintf(os.Stderr, "start telemetry: %v\n", err)
			os.Exit(1)
		}
	}

	srv := server.New(cfg, st, session, logger)

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Handler(),
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting", "addr", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	// Stop telemetry before the HTTP server so no records arrive mid-shutdown.
	if listener != nil {
		if err := listener.Close(); err != nil {
			logger.Error("telemetry stop error", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
