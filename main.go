package main

import (
	"context"
	"errors"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"department-service/internal/app"
	"department-service/internal/auth"
	"department-service/internal/authz"
	"department-service/internal/config"
	"department-service/internal/http"
	"department-service/pkg/logger"
	"department-service/pkg/metrics"

	"github.com/joho/godotenv"
)

const (
	envFilePath      = ".env"
	serverAddrPrefix = ":"
	signalBufferSize = 1
)

var shutdownSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
}

func main() {
	envErr := godotenv.Load(envFilePath)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	if envErr != nil {
		log.Warn(".env file not found, using environment variables")
	}
	log.Info("configuration loaded", "db_driver", cfg.Database.Driver, "attachments", cfg.Storage.Enabled())

	ctx := context.Background()

	store, db, err := app.OpenStore(ctx, &cfg.Database)
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	log.Info("database ready")

	attachments, err := app.NewAttachmentStore(cfg)
	if err != nil {
		log.Error("failed to create attachment storage", "error", err)
		os.Exit(1)
	}

	svc := app.NewService(store, authz.NewDepartment(), attachments, app.Options{
		StatusForwardOnly: cfg.App.StatusForwardOnly,
		MaxUploadSize:     cfg.App.MaxUploadSize,
	})

	server, err := http.NewServer(&http.ServerDependencies{
		Config:     cfg,
		Logger:     log,
		Service:    svc,
		DB:         db,
		JWTService: auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryDuration),
		Metrics:    metrics.NewRecorder(),
	})
	if err != nil {
		log.Error("failed to build HTTP server", "error", err)
		os.Exit(1)
	}

	go func() {
		log.Info("starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(serverAddrPrefix + cfg.Server.Port); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, signalBufferSize)
	signal.Notify(quit, shutdownSignals...)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		return
	}

	log.Info("server exited gracefully")
}
