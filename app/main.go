package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/claim-tracker/app/api"
	"github.com/lysyi3m/claim-tracker/app/cfg"
	"github.com/lysyi3m/claim-tracker/app/claims"
	"github.com/lysyi3m/claim-tracker/app/database"
	"github.com/lysyi3m/claim-tracker/app/tasks"
	"github.com/lysyi3m/claim-tracker/app/verifier"
)

func main() {
	config, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if config == nil {
		// Help was shown
		return
	}

	level := slog.LevelInfo
	if config.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	slog.Info("Starting Claim Tracker", "version", config.Version)

	zone := config.ReferenceZone()

	db, err := database.Open(config.DBPath, zone)
	if err != nil {
		slog.Error("Failed to open database", "path", config.DBPath, "error", err)
		os.Exit(1)
	}

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		db.Close()
		os.Exit(1)
	}
	slog.Info("Database ready", "path", config.DBPath, "schema_version", version, "dirty", dirty)

	policy, err := claims.LoadSchedulePolicy(config.ScheduleFile)
	if err != nil {
		slog.Error("Failed to load schedule policy", "file", config.ScheduleFile, "error", err)
		db.Close()
		os.Exit(1)
	}

	clock, err := claims.NewClock(zone, config.RunDate)
	if err != nil {
		slog.Error("Invalid run date", "run_date", config.RunDate, "error", err)
		db.Close()
		os.Exit(1)
	}
	slog.Info("Calendar configured", "zone", zone.String(), "today", claims.FormatDate(clock.Today()))

	repos := database.NewRepositories(db)
	planner := claims.NewPlanner(policy, zone)

	var v tasks.Verifier
	if config.VerifierURL != "" {
		v = verifier.NewClient(config.VerifierURL, config.VerifierAPIKey, config.UserAgent, config.VerifierRate)
		slog.Info("Verification enabled", "url", config.VerifierURL, "rate", config.VerifierRate)
	} else {
		slog.Warn("Verification disabled (VERIFIER_URL not set), due followups wait for API callers")
	}

	scheduler := tasks.NewScheduler(repos, planner, clock, v)
	scheduler.Start()

	handler := api.NewHandler(repos, clock, planner, scheduler, time.Duration(config.CacheTTL)*time.Second)
	server := api.NewServer(handler, config.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", config.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	scheduler.Stop()

	if err := db.Close(); err != nil {
		slog.Error("Failed to close database", "error", err)
	}

	slog.Info("Shutdown complete")
}
