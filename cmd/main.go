package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/reflection"

	grpcctx "github.com/dtroode/greenhouse-admin/internal/api/grpc/context"
	"github.com/dtroode/greenhouse-admin/internal/api/grpc/handler"
	"github.com/dtroode/greenhouse-admin/internal/api/grpc/router"
	grpcServer "github.com/dtroode/greenhouse-admin/internal/api/grpc/server"
	"github.com/dtroode/greenhouse-admin/internal/config"
	"github.com/dtroode/greenhouse-admin/internal/logger"
	"github.com/dtroode/greenhouse-admin/internal/model"
	"github.com/dtroode/greenhouse-admin/internal/repository/memory"
	"github.com/dtroode/greenhouse-admin/internal/repository/postgres"
	"github.com/dtroode/greenhouse-admin/internal/roster"
	"github.com/dtroode/greenhouse-admin/internal/server"
	"github.com/dtroode/greenhouse-admin/internal/service"
	storage "github.com/dtroode/greenhouse-admin/internal/storage/minio"
	"github.com/dtroode/greenhouse-admin/internal/tracing"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

// documentBackend is what the process needs from a document store driver.
type documentBackend interface {
	model.DocumentStore
	model.ChangeFeed
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing.Enabled, buildVersion)
	if err != nil {
		logger.Fatal("failed to set up tracing", "error", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error("failed to flush traces", "error", err)
		}
	}()

	documents, trees, closeStores, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer closeStores()

	coordinator := service.NewCoordinator(documents, trees, logger, cfg.Approval.DeviceRoot)
	reconciler := service.NewReconciler(documents, trees, coordinator, logger.With("component", "reconciler"), service.ReconcilerConfig{
		DeviceRoot:     cfg.Approval.DeviceRoot,
		Interval:       cfg.Reconcile.Interval,
		MaxRetries:     cfg.Reconcile.MaxRetries,
		InitialBackoff: cfg.Reconcile.InitialBackoff,
		SweepOrphans:   cfg.Reconcile.SweepOrphans,
	})
	projection := roster.NewProjection(documents, logger.With("component", "roster"), cfg.Roster.Locale)

	ctxMgr := grpcctx.NewManager()
	approvalHandler := handler.NewApproval(coordinator, projection, ctxMgr, logger, cfg.Approval.Timeout)
	grpcServer := registerGRPCServer(approvalHandler, ctxMgr, logger, fmt.Sprintf(":%s", cfg.GRPC.Port))
	sl := server.NewSecurityLayer(cfg.GRPC.EnableHTTPS, cfg.GRPC.CertFileName, cfg.GRPC.PrivateKeyFileName)

	logAppVersion()

	reconciler.Start()
	defer reconciler.Stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := projection.Run(gctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("roster stopped: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting server on", "address", grpcServer.Address())
		if err := grpcServer.Start(sl); err != nil {
			return fmt.Errorf("grpc server stopped: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := grpcServer.Stop(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "error", err, "address", grpcServer.Address())
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("service terminated", "error", err)
	}
	logger.Info("shutdown complete")
}

// openStores builds the configured document and tree store pair.
func openStores(ctx context.Context, cfg *config.Config, logger *logger.Logger) (documentBackend, model.TreeStore, func(), error) {
	if cfg.StoreDriver == config.DriverMemory {
		logger.Warn("using in-memory stores, state is lost on exit")
		return memory.NewDocumentStore(), memory.NewTreeStore(), func() {}, nil
	}

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("failed to reach postgres: %w", err)
	}

	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	trees, err := storage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
	if err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("failed to initialize device state storage: %w", err)
	}

	documents := postgres.NewDocumentRepository(db, cfg.Database.TxMaxAttempts)
	return documents, trees, func() { db.Close() }, nil
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}

func registerGRPCServer(
	approvalHandler *handler.Approval,
	ctxMgr model.ContextManager,
	logger *logger.Logger,
	addr string,
) *grpcServer.GRPCServer {
	r := router.New(approvalHandler, ctxMgr, logger)
	s := r.Register()

	reflection.Register(s)

	return grpcServer.NewGRPCServer(s, addr)
}
