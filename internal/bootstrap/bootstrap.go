// Package bootstrap provides dependency initialization for the sound-effect generation API.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/maauso/sfxgen-api/internal/config"
	"github.com/maauso/sfxgen-api/internal/generator"
	"github.com/maauso/sfxgen-api/internal/job"
	"github.com/maauso/sfxgen-api/internal/media"
	"github.com/maauso/sfxgen-api/internal/storage"
)

// Dependencies holds all initialized dependencies for the HTTP server.
type Dependencies struct {
	Service *job.Service

	closers []func() error
}

// Close releases the record store connection.
func (d *Dependencies) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		errs = append(errs, d.closers[i]())
	}
	return errors.Join(errs...)
}

// NewDependencies creates and initializes all dependencies for the application.
// Any connection it opens is released by Dependencies.Close.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{}

	temp, err := storage.NewLocalStorage(cfg.TempDir)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}
	logger.Info("local storage configured",
		slog.String("temp_dir", temp.TempDir()),
	)

	artifacts, err := storage.NewS3Storage(ctx, storage.S3Config{
		Region:          cfg.S3Region,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		PublicBaseURL:   cfg.S3PublicBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create S3 storage: %w", err)
	}
	logger.Info("S3 storage configured",
		slog.String("endpoint", cfg.S3Endpoint),
		slog.String("bucket", cfg.S3Bucket),
		slog.String("region", cfg.S3Region),
	)

	repo, err := deps.initRepository(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var genOpts []generator.Option
	if cfg.GeneratorDir != "" {
		genOpts = append(genOpts, generator.WithDir(cfg.GeneratorDir))
	}
	gen := generator.NewCommandGenerator(cfg.GeneratorCommand, cfg.GeneratorArgs, genOpts...)
	mixer := media.NewFFmpegProcessor(cfg.FFmpegPath)

	deps.Service = job.NewService(
		repo,
		temp,
		artifacts,
		gen,
		mixer,
		cfg.S3Bucket,
		logger,
		job.WithSourceMode(job.SourceMode(cfg.SourceVideoMode)),
		job.WithMixing(cfg.MixingEnabled),
		job.WithGenerationTimeout(cfg.GenerationTimeout),
		job.WithMixingTimeout(cfg.MixingTimeout),
		job.WithMaxVideoBytes(cfg.MaxUploadBytes),
		job.WithAllowedVideoTypes(cfg.AllowedVideoTypes),
	)
	return deps, nil
}

// initRepository opens the record store selected by DATABASE_URL and
// applies its schema.
func (d *Dependencies) initRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (job.Repository, error) {
	kind, err := cfg.DatabaseKind()
	if err != nil {
		return nil, err
	}

	switch kind {
	case config.DatabasePostgres:
		pool, err := job.OpenPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		repo := job.NewPostgresRepository(pool)
		if err := repo.Migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		d.closers = append(d.closers, func() error {
			pool.Close()
			return nil
		})
		logger.Info("postgres record store configured")
		return repo, nil

	case config.DatabaseSQLite:
		repo, err := job.OpenSQLite(ctx, cfg.SQLitePath())
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		d.closers = append(d.closers, repo.Close)
		logger.Info("sqlite record store configured",
			slog.String("path", cfg.SQLitePath()),
		)
		return repo, nil

	default:
		logger.Warn("in-memory record store configured; records are lost on restart")
		return job.NewMemoryRepository(), nil
	}
}
