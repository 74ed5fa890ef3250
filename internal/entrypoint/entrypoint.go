package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/kobo-exporter/internal/app"
	"github.com/mrlokans/kobo-exporter/internal/config"
	http_controllers "github.com/mrlokans/kobo-exporter/internal/http"
	"github.com/mrlokans/kobo-exporter/internal/kobo"
	"github.com/mrlokans/kobo-exporter/internal/scheduler"
	"github.com/mrlokans/kobo-exporter/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	log.Printf("Export directory: %s\n", cfg.Export.Dir)

	// Check export dir exists and is writable by touching and removing an empty file
	if err := os.MkdirAll(cfg.Export.Dir, 0755); err != nil {
		log.Fatalf("Export directory %s cannot be created: %v", cfg.Export.Dir, err)
		return
	}
	probe, err := os.CreateTemp(cfg.Export.Dir, ".kobo-exporter-*")
	if err != nil {
		log.Fatalf("Export directory %s is not writable", cfg.Export.Dir)
		return
	}
	probe.Close()
	if err := os.Remove(probe.Name()); err != nil {
		log.Printf("Could not remove the test file from the export directory %s", cfg.Export.Dir)
	}

	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Kobo exporter v%s", version)

	a, err := app.New(cfg, app.Options{})
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	detect := func() (string, error) {
		return kobo.ResolveDrive(a.Settings.KoboDrive())
	}

	routerCfg := http_controllers.RouterConfig{
		Database:     a.DB,
		Books:        a.Exports,
		Runs:         a.Runs,
		Settings:     a.Settings,
		Exporter:     a.Export,
		DetectDevice: detect,
		Version:      version,
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:         1,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg, a.Logger)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(tasks.NewExportQueue(a.Export, a.Logger))

		// Start task workers in background
		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		routerCfg.TaskQueue = taskClient
	}

	var watcher *scheduler.DeviceWatcher
	if cfg.Watch.Enabled {
		watcher = scheduler.NewDeviceWatcher(a.Export, detect, cfg.Watch.Schedule)
		if err := watcher.Start(context.Background()); err != nil {
			log.Printf("WARNING: device watcher disabled: %v", err)
			watcher = nil
		}
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		if watcher != nil {
			watcher.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
