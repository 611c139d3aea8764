package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"klassart-storefront/internal/config"
	"klassart-storefront/internal/httpserver"
)

func main() {
	cfg := config.Load()
	logger := log.New(os.Stdout, "[gateway] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	if cfg.BackendURL == "" {
		logger.Printf("BACKEND_URL is not set; proxied requests will fail until it is")
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		BackendURL: cfg.BackendURL,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting gateway on %s, backend %s", cfg.HTTPAddr, cfg.BackendURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
