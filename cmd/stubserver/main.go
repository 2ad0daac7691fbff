package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/vishnukanth5457/joinup/internal/config"
	"github.com/vishnukanth5457/joinup/internal/logging"
	"github.com/vishnukanth5457/joinup/internal/model"
	"github.com/vishnukanth5457/joinup/internal/stubserver"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := stubserver.NewServer(cfg, logger)
	if email := os.Getenv("STUB_ADMIN_EMAIL"); email != "" {
		_, err := server.AddUser(model.User{
			Email:      email,
			Name:       "Administrator",
			Role:       model.RoleAdmin,
			College:    "JoinUp",
			IsApproved: true,
		}, os.Getenv("STUB_ADMIN_PASSWORD"))
		if err != nil {
			logger.Fatalf("seed admin failed: %v", err)
		}
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Infof("stub event service listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown error: %v", err)
	}
}
