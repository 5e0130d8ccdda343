package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nurpe/freight-cost-reports/internal/auth"
	"github.com/nurpe/freight-cost-reports/internal/config"
	"github.com/nurpe/freight-cost-reports/internal/db"
	"github.com/nurpe/freight-cost-reports/internal/excel"
	httphandler "github.com/nurpe/freight-cost-reports/internal/http"
	"github.com/nurpe/freight-cost-reports/internal/http/middleware"
	"github.com/nurpe/freight-cost-reports/internal/logger"
	"github.com/nurpe/freight-cost-reports/internal/metrics"
	"github.com/nurpe/freight-cost-reports/internal/pdf"
	"github.com/nurpe/freight-cost-reports/internal/repository"
	"github.com/nurpe/freight-cost-reports/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	reportRepo := repository.NewReportRepository(database, cfg.Reports.StatusChunkSize)
	partyRepo := repository.NewPartyRepository(database, cfg.Reports.StatusChunkSize)
	appMetrics := metrics.New(cfg.Environment)

	reportService := service.NewCostReportService(
		reportRepo,
		partyRepo,
		excel.NewGenerator(),
		pdf.NewGenerator(),
		appMetrics,
		cfg,
		log,
	)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(reportService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, appMetrics, log, httphandler.RouterConfig{
		Environment:    cfg.Environment,
		AllowedOrigins: cfg.HTTP.CORSAllowedOrigins,
	})

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", addr).Msg("starting cost reports service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		os.Exit(1)
	}
	log.Info().Msg("cost reports service stopped")
}
