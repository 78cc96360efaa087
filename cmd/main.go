package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"debtkeeper/internal/clients"
	"debtkeeper/internal/config"
	"debtkeeper/internal/repository"
	"debtkeeper/internal/scheduler"
	"debtkeeper/internal/service"
	"debtkeeper/internal/transport/auth"
	"debtkeeper/internal/transport/rest"
	"debtkeeper/internal/transport/websocket"
	"debtkeeper/pkg/database/postgres"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using system env or defaults")
	}

	// top-level context which we can cancel on shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := config.Load()

	db := mustInitPostgres(cfg.Postgres, logger)
	defer postgres.Close(db)

	redisClient := mustInitRedis(cfg.Redis, logger)
	defer redisClient.Close()

	// Export storage: local disk by default, s3 when configured.
	var exportStorage service.ExportStorage
	var localStorage *clients.StorageClient
	switch cfg.Export.Backend {
	case "s3":
		s3Client, err := clients.NewS3Client(ctx, clients.S3Config{
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Bucket:          cfg.S3.Bucket,
			UseSSL:          cfg.S3.UseSSL,
			Region:          cfg.S3.Region,
			Prefix:          cfg.S3.Prefix,
		})
		if err != nil {
			logger.Fatalf("s3 init error: %v", err)
		}
		exportStorage = s3Client
	default:
		storageClient, err := clients.NewLocalStorage(cfg.Export.Dir, cfg.Export.FilesPublicPrefix, cfg.Export.ExternalURL)
		if err != nil {
			logger.Fatalf("storage init error: %v", err)
		}
		localStorage = storageClient
		exportStorage = storageClient
	}

	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)
	wsClient := clients.NewWebSocketClient(wsHub)

	debtRepo := repository.NewDebtRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	tokenRepo := repository.NewApiTokenRepository(db)

	debtSvc := service.NewDebtService(debtRepo, wsClient, logger)
	statsSvc := service.NewStatsService(debtRepo, redisClient, logger)
	paymentSvc := service.NewPaymentService(ledgerRepo, paymentRepo, debtRepo, statsSvc, wsClient, logger)
	reconcileSvc := service.NewReconcileService(debtRepo, wsClient, logger)
	autopaySvc := service.NewAutoPayService(debtRepo, paymentSvc, logger)
	exportSvc := service.NewExportService(debtSvc, redisClient, exportStorage, wsClient, logger)

	sched, err := scheduler.New(cfg.Scheduler, reconcileSvc, debtSvc, autopaySvc, logger)
	if err != nil {
		logger.Fatalf("scheduler init error: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	tokenMiddleware := auth.TokenMiddleware(tokenRepo)

	handler := rest.NewHandler(debtSvc, paymentSvc, statsSvc, exportSvc)
	router := handler.InitRouterWithAuth(tokenMiddleware)

	// public root router with the protected router mounted underneath, so
	// /files and /health stay public while everything else needs a token
	root := chi.NewRouter()

	root.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if localStorage != nil {
		root.Get("/files/{file}", func(w http.ResponseWriter, r *http.Request) {
			file := chi.URLParam(r, "file")
			path := filepath.Join(localStorage.BaseDir, filepath.Base(file))
			if _, err := os.Stat(path); err != nil {
				if os.IsNotExist(err) {
					http.NotFound(w, r)
					return
				}
				http.Error(w, "failed to access file", http.StatusInternalServerError)
				return
			}

			// prefer original filename in Content-Disposition (strip random prefix)
			orig := file
			if idx := strings.IndexByte(file, '_'); idx >= 0 {
				orig = file[idx+1:]
			}
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", orig))

			http.ServeFile(w, r, path)
		})
	}

	// protected websocket endpoint
	router.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := auth.GetOwnerID(r.Context())
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		logger.WithField("owner_id", ownerID).Info("websocket connected")
		wsHub.HandleWebSocket(w, r, ownerID)
	})

	root.Mount("/", router)

	corsHandler := withCORS(root)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		logger.Infof("HTTP server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			srvErr <- err
			return
		}
		srvErr <- nil
	}()

	// background cleaner for local export files
	if localStorage != nil {
		go func() {
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := localStorage.CleanupOlderThan(30 * time.Minute); err != nil {
						logger.WithError(err).Warn("storage cleanup error")
					}
				}
			}
		}()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-srvErr:
		if err != nil {
			logger.Fatalf("HTTP server error: %v", err)
		}
	case sig := <-stop:
		logger.Infof("shutdown signal received: %v", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("HTTP server shutdown error")
		}

		cancel()
		sched.Stop()

		postgres.Close(db)
		redisClient.Close()

		logger.Info("shutdown complete")
	}
}

func mustInitPostgres(cfg config.PostgresConfig, logger *logrus.Logger) *sql.DB {
	db, err := postgres.NewPostgresConnection(postgres.ConnectionInfo{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.User,
		DBName:   cfg.DBName,
		SSLMode:  cfg.SSLMode,
		Password: cfg.Password,
	})
	if err != nil {
		logger.Fatalf("postgres init error: %v", err)
	}
	return db
}

func mustInitRedis(cfg config.RedisConfig, logger *logrus.Logger) *clients.RedisClient {
	client, err := clients.NewRedisClient(clients.RedisConfig{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		MaxRetries:  cfg.MaxRetries,
		DialTimeout: time.Duration(cfg.DialTimeout) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		Prefix:      cfg.Prefix,
	})
	if err != nil {
		logger.Fatalf("redis init error: %v", err)
	}
	return client
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")

			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
