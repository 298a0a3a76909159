package server

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const shutdownGracePeriod = 5 * time.Second

// GracefulShutdown blocks until SIGINT or SIGTERM, then drains the HTTP
// server and signals the done channel. A second signal forces an immediate
// exit because signal delivery is restored once the context fires.
func GracefulShutdown(srv *http.Server, logger *zap.Logger, done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info("Shutdown signal received, draining connections", zap.Duration("grace_period", shutdownGracePeriod))

	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown did not complete cleanly", zap.Error(err))
	}

	logger.Info("HTTP server stopped")
	done <- true
}
