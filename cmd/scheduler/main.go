// Package main is the entry point for the maintplane scheduler.
// It triggers a maintenance run on the controller every scheduler_interval.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"maintplane/internal/config"
	"maintplane/internal/logger"
	"maintplane/internal/observability"
	"maintplane/internal/scheduler"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: maintplane.yaml in current directory)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewWithWriter(os.Stdout, logger.ParseLevel(cfg.LogLevel)).With("service", "scheduler")

	if cfg.SystemSecret == "" {
		log.Error("system_secret is required (env: SYSTEM_SECRET)")
		os.Exit(1)
	}

	// Tracing
	shutdownTracer, err := observability.InitTracer(context.Background(), "maintplane-scheduler", cfg.OTELEndpoint)
	if err != nil {
		log.Error("failed to init tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Warn("failed to shutdown tracer", "error", err)
		}
	}()

	client := scheduler.NewClient(cfg.ControllerURL, cfg.SystemSecret, 0)
	runner := scheduler.NewRunner(client, scheduler.RunnerConfig{
		Interval:   cfg.SchedulerInterval,
		MaxBackoff: cfg.SchedulerMaxBackoff,
	}, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := runner.Run(ctx); err != nil && err != context.Canceled {
			log.Error("scheduler stopped", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down scheduler")
	cancel()

	select {
	case <-runner.Done():
		log.Info("scheduler exited properly")
	case <-time.After(5 * time.Minute):
		log.Warn("timed out waiting for in-flight run")
	}
}
