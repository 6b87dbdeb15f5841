package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"apparel-designer/app/controller"
	"apparel-designer/app/router"
	"apparel-designer/config"
	"apparel-designer/db"
	"apparel-designer/repository"
	"apparel-designer/service"
)

const shutdownTimeout = 10 * time.Second

// App is the wired designer service
type App struct {
	Config   config.Config
	Logger   *zap.Logger
	Handler  http.Handler
	Sessions *service.SessionService

	closers []func() error
}

// Initialize initializes the application
func Initialize(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	catalog, err := repository.NewCatalogRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	store, err := openKVStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.Close)

	completer, err := newCompleter(ctx, cfg.AI, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	exporter, err := newExporter(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	designer := service.NewSelectionService(catalog, nil)
	images := service.NewImageService(logger)
	devices := service.NewRelayDevices(cfg.Designs.CaptureIdleTimeout, logger)
	capture := service.NewCaptureService(devices, images, logger)
	chats := repository.NewChatRepository(store)
	sessions := service.NewSessionService(
		repository.NewSelectionRepository(store),
		chats,
		designer,
		capture,
		cfg.Designs.SessionTTL,
		logger,
	)
	a.Sessions = sessions
	// Sessions close first so no camera outlives the store
	a.closers = append(a.closers, func() error { sessions.Close(); return nil })

	raster := service.NewChromeRasterizer(cfg.Render.ChromePath, logger)
	previews := service.NewPreviewService(designer, service.NewRenderService(), raster, exporter, cfg.Render.LoadingDelay)
	chat := service.NewChatService(chats, completer, sessions, cfg.AI.Timeout, logger)

	a.Handler = router.New(&router.Controllers{
		Catalog: controller.NewCatalogController(catalog, logger),
		Session: controller.NewSessionController(sessions, designer, logger),
		Image:   controller.NewImageController(sessions, designer, images, cfg.Designs.MaxUploadBytes, logger),
		Preview: controller.NewPreviewController(sessions, previews, logger),
		Capture: controller.NewCaptureController(sessions, designer, devices, images, logger),
		Chat:    controller.NewChatController(sessions, chat, logger),
	}, logger)

	return a, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully
func (a *App) Run(ctx context.Context) error {
	// Listen on 0.0.0.0 to accept connections from all interfaces (required for Docker)
	addr := net.JoinHostPort("0.0.0.0", a.Config.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("🚀 Server starting", zap.String("addr", addr), zap.String("env", a.Config.Server.Env))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	a.Logger.Info("🛑 Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// Close releases sessions and the key-value store, newest first
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func openKVStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (repository.KVStore, error) {
	switch cfg.KV.Backend {
	case "postgres":
		conn, err := db.Open(ctx, cfg.DB, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := db.EnsureSchema(ctx, conn); err != nil {
			conn.Close()
			return nil, err
		}
		return repository.NewPostgresKVStore(conn), nil
	case "redis":
		store, err := repository.NewRedisKVStore(ctx, cfg.KV.RedisAddr, cfg.KV.RedisPassword, cfg.KV.RedisDB)
		if err != nil {
			return nil, err
		}
		logger.Info("✓ Redis key-value store connected", zap.String("addr", cfg.KV.RedisAddr))
		return store, nil
	case "mongo":
		store, err := repository.NewMongoKVStore(ctx, cfg.KV.MongoURI, cfg.KV.MongoDatabase)
		if err != nil {
			return nil, err
		}
		logger.Info("✓ Mongo key-value store connected", zap.String("database", cfg.KV.MongoDatabase))
		return store, nil
	default:
		logger.Info("✓ Using in-memory key-value store")
		return repository.NewMemoryKVStore(), nil
	}
}

func newCompleter(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (service.Completer, error) {
	if cfg.APIKey == "" {
		logger.Warn("⚠️ GENAI_API_KEY not set, design helper will answer with the fallback message")
		return service.OfflineCompleter{}, nil
	}
	completer, err := service.NewGenAICompleter(ctx, cfg.APIKey, cfg.Model)
	if err != nil {
		return nil, err
	}
	logger.Info("✓ GenAI completer ready", zap.String("model", cfg.Model))
	return completer, nil
}

func newExporter(ctx context.Context, cfg config.Config, logger *zap.Logger) (*service.ExportService, error) {
	if !cfg.Drive.Enabled() {
		logger.Info("Design export disabled (set GOOGLE_APPLICATION_CREDENTIALS and DRIVE_EXPORT_FOLDER_ID)")
		return nil, nil
	}
	drive, err := service.NewDriveService(ctx, cfg.Drive.CredentialsPath)
	if err != nil {
		return nil, err
	}
	raster := service.NewChromeRasterizer(cfg.Render.ChromePath, logger)
	return service.NewExportService(raster, drive, cfg.Drive.FolderID, logger), nil
}
