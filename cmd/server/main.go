package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/passvault/passvault-server/internal/api/http/handler"
	"github.com/passvault/passvault-server/internal/api/http/httpctx"
	"github.com/passvault/passvault-server/internal/api/http/middleware"
	"github.com/passvault/passvault-server/internal/api/http/router"
	"github.com/passvault/passvault-server/internal/billing"
	"github.com/passvault/passvault-server/internal/config"
	"github.com/passvault/passvault-server/internal/logger"
	"github.com/passvault/passvault-server/internal/model"
	"github.com/passvault/passvault-server/internal/password"
	"github.com/passvault/passvault-server/internal/repository/postgres"
	"github.com/passvault/passvault-server/internal/server"
	"github.com/passvault/passvault-server/internal/service"
	storage "github.com/passvault/passvault-server/internal/storage/minio"
	"github.com/passvault/passvault-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	accountRepo := postgres.NewAccountRepository(db)
	recordRepo := postgres.NewRecordRepository(db)

	tokenManager := token.NewJWT(cfg.Token.Secret, cfg.Token.Validity)

	hasher, err := password.NewHasher(cfg.Auth.HashCost)
	if err != nil {
		logger.Fatal("failed to initialize password hasher", "error", err)
	}

	verifier, err := billing.NewVerifier(cfg.Billing.WebhookSecret, cfg.Billing.SignatureAlg)
	if err != nil {
		logger.Fatal("failed to initialize billing verifier", "error", err)
	}

	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Fatal("failed to create minio client", "error", err)
	}
	storageClient, err := storage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
	if err != nil {
		logger.Fatal("failed to initialize storage client", "error", err)
	}

	authService := service.NewAuth(accountRepo, hasher, tokenManager, logger)
	subscriptionService := service.NewSubscription(accountRepo, recordRepo, verifier, cfg.Quota.FreeTierLimit, logger)
	vaultService := service.NewVault(recordRepo, accountRepo, storageClient, subscriptionService, cfg.Storage.OffloadThreshold, logger)

	ctxManager := httpctx.NewManager()
	authMiddleware := middleware.NewAuth(tokenManager, ctxManager, logger)

	mux := router.New(router.Handlers{
		Auth:         handler.NewAuth(authService, logger),
		Record:       handler.NewRecord(vaultService, ctxManager, logger),
		Subscription: handler.NewSubscription(subscriptionService, ctxManager, logger),
		Health:       handler.NewHealth(db, logger),
	}, authMiddleware, logger)

	httpServer := server.NewHTTP(fmt.Sprintf(":%s", cfg.HTTP.Port), mux, logger)

	var sl model.SecurityLayer
	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(httpServer)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", httpServer.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
