package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/templext/internal/api"
	"github.com/dgallion1/templext/internal/config"
	"github.com/dgallion1/templext/internal/convert"
	"github.com/dgallion1/templext/internal/pipeline"
	"github.com/dgallion1/templext/internal/report"
	"github.com/dgallion1/templext/internal/resolve"
	"github.com/dgallion1/templext/internal/source"
)

func main() {
	cfg, err := config.LoadWithFile("")
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateServer(); err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := cfg.Logger(os.Stdout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Documents arrive over HTTP, so reads stay below the site root.
	site, err := source.OpenRooted(cfg.SiteRoot)
	if err != nil {
		log.Error("open site root", "error", err)
		os.Exit(1)
	}
	defer site.Close()

	// Initialize pipeline.
	resolver := resolve.New(resolve.Options{
		FS:         site,
		Reporter:   report.NewLogger(log),
		Converters: convert.Set{FallbackPdftotext: cfg.PDFFallbackPdftotext},
		Logger:     log,
	})
	stats := pipeline.NewLatencyStats(time.Hour)
	proc := pipeline.NewProcessor(resolver, stats, log)
	orch := pipeline.NewOrchestrator(cfg, proc, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting templext", "port", cfg.Port, "site_root", cfg.SiteRoot)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
