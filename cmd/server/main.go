package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fseda/Vidly/internal/auth"
	"github.com/fseda/Vidly/internal/config"
	"github.com/fseda/Vidly/internal/logging"
	"github.com/fseda/Vidly/internal/metrics"
	"github.com/fseda/Vidly/internal/server"
	"github.com/fseda/Vidly/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.New("info", "json").WithError(err).Fatal("load .env")
	}
	cfg, err := config.Load()
	if err != nil {
		logging.New("info", "json").WithError(err).Fatal("invalid configuration")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	// ── PostgreSQL ────────────────────────────────────────────
	pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.WithError(err).Fatal("postgres connect")
	}
	defer pgPool.Close()
	pgStore := store.NewPostgresStore(pgPool)
	if err := pgStore.Migrate(ctx); err != nil {
		log.WithError(err).Fatal("postgres migrate")
	}

	// ── MongoDB ──────────────────────────────────────────────
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.WithError(err).Fatal("mongo connect")
	}
	defer mongoClient.Disconnect(context.Background())
	mongoStore := store.NewMongoStore(mongoClient, cfg.MongoDB, cfg.MongoTransactions)
	if err := mongoStore.EnsureIndexes(ctx); err != nil {
		log.WithError(err).Fatal("mongo indexes")
	}
	if !cfg.MongoTransactions {
		log.Warn("mongo transactions disabled, rentals rely on compensating writes")
	}

	// ── Redis ────────────────────────────────────────────────
	rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.WithError(err).Fatal("redis connect")
	}
	defer rdb.Close()

	// ── MinIO ────────────────────────────────────────────────
	minioStore, err := store.NewMinioStore(
		ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
		cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
	)
	if err != nil {
		log.WithError(err).Fatal("minio connect")
	}

	// ── Router ───────────────────────────────────────────────
	handler := server.New(server.Deps{
		Store:       mongoStore,
		Users:       pgStore,
		Throttle:    auth.NewLoginThrottle(rdb, cfg.LoginMaxAttempts, cfg.LoginLockout),
		Receipts:    minioStore,
		Tokens:      auth.NewTokenManager(cfg.JWTPrivateKey, cfg.JWTIssuer, cfg.JWTTTL),
		Log:         log,
		Metrics:     metrics.New(),
		CORSOrigins: cfg.CORSOrigins,
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("vidly listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.WithError(err).Error("graceful shutdown")
	}
}
