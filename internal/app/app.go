package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"mock-relayer-go/internal/config"
	"mock-relayer-go/internal/handler"
	"mock-relayer-go/internal/metrics"
	"mock-relayer-go/internal/pipeline"
	"mock-relayer-go/internal/proof"
	"mock-relayer-go/internal/router"
	"mock-relayer-go/internal/scheduler"
	"mock-relayer-go/internal/store"
)

// Run initializes and starts the application
func Run() error {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	configureLogging(cfg.Log)

	logrus.Info("Starting Mock Relayer Service")

	m := metrics.NewMetrics(prometheus.DefaultRegisterer)
	statuses := store.NewStatusStore()
	proofs := store.NewProofStore()

	var generator proof.Generator = proof.NewRandomGenerator()
	if cfg.Processing.ProofSeed != "" {
		generator = proof.SeededGenerator{Seed: cfg.Processing.ProofSeed}
		logrus.Info("Using seeded proof generator")
	}

	p := pipeline.New(statuses, proofs, generator, m, pipeline.Options{
		Delay:            cfg.Processing.Delay,
		StrictExtraction: cfg.Processing.StrictExtraction,
	})

	sched := scheduler.NewScheduler(time.Duration(cfg.Reporter.IntervalSeconds)*time.Second, statuses, proofs, m)

	gin.SetMode(gin.ReleaseMode)
	h := handler.NewHandlers(p, statuses, proofs, sched, prometheus.DefaultGatherer, cfg.Processing.MaxBodyBytes)
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupRouter(h),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	if cfg.Reporter.Enabled {
		if err := sched.Start(); err != nil {
			return fmt.Errorf("failed to start reporter: %w", err)
		}
	}

	serverErr := make(chan error, 1)
	go func() {
		logrus.Infof("Starting HTTP server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-serverErr:
		sched.Stop()
		return fmt.Errorf("HTTP server error: %w", err)
	}

	logrus.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := sched.Stop(); err != nil {
		logrus.Errorf("Failed to stop reporter: %v", err)
	}

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("HTTP server shutdown error: %v", err)
	}

	if err := p.Wait(ctx); err != nil {
		logrus.Warnf("Pipeline tasks still running at shutdown: %v", err)
	}

	logrus.Info("Server stopped gracefully")
	return nil
}

func configureLogging(cfg config.LogConfig) {
	if cfg.Format == "text" {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	// Validate has already checked the level.
	level, _ := logrus.ParseLevel(cfg.Level)
	logrus.SetLevel(level)
}
