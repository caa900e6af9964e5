package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"papergen/internal/api"
	"papergen/internal/config"
	"papergen/internal/logging"
)

func main() {
	container, err := buildContainer()
	if err != nil {
		log.Fatalf("build container: %v", err)
	}

	err = container.Invoke(func(cfg config.Config, conn *sql.DB, server *api.Server, logger logging.Logger) error {
		defer conn.Close()
		return run(cfg, server, logger)
	})
	if err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func run(cfg config.Config, server *api.Server, logger logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// No write timeout: a generation request holds the connection until the
	// model finishes.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", srv.Addr, "provider", cfg.Provider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}
