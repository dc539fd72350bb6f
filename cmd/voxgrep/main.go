package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/voxgrep/voxgrep/internal/api"
	"github.com/voxgrep/voxgrep/internal/config"
	"github.com/voxgrep/voxgrep/internal/db"
	"github.com/voxgrep/voxgrep/internal/library"
	"github.com/voxgrep/voxgrep/internal/logging"
	"github.com/voxgrep/voxgrep/internal/playback"
	"github.com/voxgrep/voxgrep/internal/render"
	"github.com/voxgrep/voxgrep/internal/search"
	"github.com/voxgrep/voxgrep/internal/watcher"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	// A missing .env is fine; environment and voxgrep.yaml still apply.
	godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	if err := os.MkdirAll(cfg.ExportDir(), 0755); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel)
	logger.Info("starting voxgrep", "version", config.Version, "data_dir", logging.SanitizePath(cfg.DataDir))

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := library.NewRepository(database.Conn())

	var prober library.Prober
	var renderer *render.Renderer
	ffmpeg, err := render.NewExecFFmpeg(cfg.FFmpegPath, cfg.FFprobePath, logger)
	if err != nil {
		logger.Warn("ffmpeg unavailable, media rendering disabled", "error", err)
	} else {
		prober = func(ctx context.Context, path string) (float64, error) {
			result, err := ffmpeg.Probe(ctx, path)
			if err != nil {
				return 0, err
			}
			return result.Duration, nil
		}
		renderer = render.NewRenderer(ffmpeg, logger)
	}

	libSvc := library.NewService(repo, prober, logging.WithComponent(logger, "library"))
	engine := search.NewEngine()

	var executor library.ExportExecutor
	if renderer != nil {
		executor = render.NewSupercutExecutor(libSvc, engine, renderer, cfg.ExportDir(), cfg.BatchSize,
			logging.WithComponent(logger, "export"))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := library.NewRunner(libSvc, repo, executor, logging.WithComponent(logger, "runner"))
	go runner.Start(ctx)

	// Initial scan of configured media dirs, then watch them for changes.
	for _, dir := range cfg.MediaDirs {
		if _, err := libSvc.EnqueueScan(ctx, dir); err != nil {
			logger.Warn("failed to enqueue initial scan", "dir", dir, "error", err)
		}
	}
	startWatchers(ctx, cfg, libSvc, logger)

	apiServer := api.NewServer(api.ServerConfig{
		Port:        cfg.Port,
		MediaDirs:   cfg.MediaDirs,
		ExportDir:   cfg.ExportDir(),
		BatchSize:   cfg.BatchSize,
		FrameRate:   cfg.FrameRate,
		Library:     libSvc,
		Repository:  repo,
		Engine:      engine,
		Playback:    playback.NewServer(cfg.MediaDirs, logging.WithComponent(logger, "playback")),
		Logger:      logging.WithComponent(logger, "api"),
		StartTime:   startTime,
		CORSOrigins: cfg.CORSOrigins,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received shutdown signal", "signal", sig)

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// startWatchers begins one watch loop per media dir; a change to a media
// or transcript file queues a rescan of its directory.
func startWatchers(ctx context.Context, cfg *config.Config, libSvc *library.Service, logger *slog.Logger) {
	for _, dir := range cfg.MediaDirs {
		w, err := watcher.NewFSWatcher(logging.WithComponent(logger, "watcher"))
		if err != nil {
			logger.Warn("file watching unavailable", "error", err)
			return
		}

		w.OnChange(func(path string, event watcher.EventType) {
			logger.Info("media change detected", "path", logging.SanitizePath(path))
			if _, err := libSvc.EnqueueScan(ctx, dir); err != nil {
				logger.Warn("failed to enqueue rescan", "error", err)
			}
		})

		go func(d string) {
			if err := w.Watch(ctx, d); err != nil && ctx.Err() == nil {
				logger.Warn("watcher stopped", "dir", d, "error", err)
			}
		}(dir)
	}
}
