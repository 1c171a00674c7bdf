package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/coverly/quotes/internal/app"
	"github.com/coverly/quotes/internal/config"
	"github.com/coverly/quotes/internal/logger"
)

var (
	commit    string
	buildDate string
)

func main() {
	configPath := flag.String("config", "", "location of config file. If non is specified config will be loaded from the environment")
	flag.Parse()

	var (
		cfg config.Config
		err error
	)
	if *configPath != "" {
		err = cfg.Load(*configPath)
	} else {
		err = cfg.LoadFromEnv()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("build info", "commit", commit, "date", buildDate, "config", *configPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("app setup failed", "error", err)
	}
	defer a.Close()

	h := &handlers{
		quotes:     a.Quotes,
		aggregates: a.Aggregates,
		ping:       a.Repo.DB().PingContext,
		log:        log,
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: newRouter(h, cfg.CORSAllowedOrigins, log),
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "db_driver", cfg.DBDriver, "cache_type", cfg.CacheType)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down", "timeout", cfg.ShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
}
