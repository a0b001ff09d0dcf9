// Package bootstrap provides dependency initialization for the video editor bridge.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/maauso/videoeditor-bridge/internal/bridge"
	"github.com/maauso/videoeditor-bridge/internal/command"
	"github.com/maauso/videoeditor-bridge/internal/config"
	"github.com/maauso/videoeditor-bridge/internal/media"
	"github.com/maauso/videoeditor-bridge/internal/operation"
	"github.com/maauso/videoeditor-bridge/internal/storage"
)

// Dependencies holds all initialized dependencies shared by the HTTP server
// and the CLI.
type Dependencies struct {
	Storage    storage.Storage
	Media      *media.FFmpegUtility
	Operations *operation.Manager
	Dispatcher *bridge.Dispatcher
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	// Initialize storage
	store, err := initStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	// Initialize media utility
	profile := media.DefaultProfile()
	if cfg.EncodingProfile != "" {
		profile, err = media.LoadProfile(cfg.EncodingProfile)
		if err != nil {
			return nil, fmt.Errorf("load encoding profile: %w", err)
		}
		logger.Info("encoding profile loaded",
			slog.String("path", cfg.EncodingProfile),
			slog.String("video_codec", profile.VideoCodec),
			slog.String("preset", profile.Preset),
		)
	}

	utility, err := media.NewFFmpegUtility(store,
		media.WithFFmpegPath(cfg.FFmpegPath),
		media.WithFFprobePath(cfg.FFprobePath),
		media.WithProfile(profile),
	)
	if err != nil {
		return nil, fmt.Errorf("create media utility: %w", err)
	}

	// Initialize operation registry and commands
	ops := operation.NewManager(logger)
	launcher := command.NewLauncher(ops, logger)
	dispatcher := bridge.NewDispatcher()
	command.Register(dispatcher, launcher, ops, media.Limit(utility, cfg.MaxConcurrentOperations), store)

	return &Dependencies{
		Storage:    store,
		Media:      utility,
		Operations: ops,
		Dispatcher: dispatcher,
	}, nil
}

// VerifyTools checks that ffmpeg and ffprobe can be executed.
func (d *Dependencies) VerifyTools(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := d.Media.VerifyInstalled(ctx); err != nil {
		return fmt.Errorf("ffmpeg verification failed: %w", err)
	}
	return nil
}

// Close cancels every operation still running.
func (d *Dependencies) Close() {
	d.Operations.CancelAll()
}

// initStorage creates the appropriate storage backend based on configuration.
func initStorage(cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		s3Store, err := storage.NewS3Storage(cfg.OutputDir, s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Info("S3 storage configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
			slog.String("output_dir", s3Store.Dir()),
		)
		return s3Store, nil
	}

	localStore, err := storage.NewLocalStorage(cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}
	logger.Info("local storage configured",
		slog.String("output_dir", localStore.Dir()),
	)
	return localStore, nil
}
