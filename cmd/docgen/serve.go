package main

import (
	"context"
	"fmt"

	docgen "github.com/alnah/go-docgen"
	"github.com/alnah/go-docgen/internal/artifact"
	"github.com/alnah/go-docgen/internal/config"
	"github.com/alnah/go-docgen/internal/hints"
	"github.com/alnah/go-docgen/internal/jobs"
	"github.com/alnah/go-docgen/internal/logger"
	"github.com/alnah/go-docgen/internal/provider"
	"github.com/alnah/go-docgen/internal/server"
)

// runServe starts the HTTP API and blocks until interrupted.
func runServe(ctx context.Context, args []string, env *Environment) error {
	flags, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	cfg, err := loadConfig(flags.common, env)
	if err != nil {
		return err
	}
	mergeBackendFlags(cfg, flags.backend)
	setIfNotEmpty(&cfg.Server.Addr, flags.addr)
	if flags.workers > 0 {
		cfg.Render.Workers = flags.workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	page, err := pageSettings(cfg)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Mode, flags.common.verbose)
	if err != nil {
		return fmt.Errorf("%w: %w", config.ErrInvalidValue, err)
	}
	defer log.Sync()

	registry, err := provider.FromConfigs(ctx, providerConfigs(cfg))
	if err != nil {
		return err
	}
	if registry.Len() == 0 {
		log.Warn("no content provider configured, generation is disabled")
	}

	store, closeStore, err := openJobStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	artifacts, err := openArtifactStore(ctx, cfg)
	if err != nil {
		return err
	}

	pool := docgen.NewConverterPool(docgen.ResolvePoolSize(cfg.Render.Workers), converterOptions(cfg)...)
	defer pool.Close()

	srv, err := server.New(server.Config{
		Addr:      cfg.Server.Addr,
		APIKey:    cfg.Secrets.ServerAPIKey,
		Renderer:  pool,
		Jobs:      store,
		Artifacts: artifacts,
		Providers: registry,
		Logger:    log,
		Defaults: server.Defaults{
			Provider:    cfg.Provider.Default,
			Temperature: cfg.Provider.Temperature,
			MaxTokens:   cfg.Provider.MaxTokens,
			Chunks:      cfg.Provider.Chunks,
			Author:      cfg.Document.Author,
			Page:        page,
		},
		Retention:     cfg.Retention(),
		SweepSchedule: cfg.Server.SweepSchedule,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", config.ErrInvalidValue, err)
	}
	defer srv.Close()

	log.Info("starting",
		"version", Version,
		"backend", cfg.Render.Backend,
		"workers", pool.Size(),
		"providers", registry.Names(),
		"auth", cfg.Secrets.ServerAPIKey != "",
	)
	return srv.Run(ctx)
}

// openJobStore returns the Redis store when an address is configured and
// the in-memory store otherwise. The returned func releases it.
func openJobStore(ctx context.Context, cfg *config.Config) (jobs.Store, func(), error) {
	if cfg.Server.RedisAddr == "" {
		return jobs.NewMemoryStore(cfg.JobTTL()), func() {}, nil
	}
	rdb, err := jobs.DialRedis(ctx, cfg.Server.RedisAddr)
	if err != nil {
		return nil, nil, fmt.Errorf("%w%s", err, hints.ForRedis(cfg.Server.RedisAddr))
	}
	return jobs.NewRedisStore(rdb, cfg.JobTTL()), func() { _ = rdb.Close() }, nil
}

// openArtifactStore returns the S3 store when a bucket is configured and a
// directory store otherwise.
func openArtifactStore(ctx context.Context, cfg *config.Config) (artifact.Store, error) {
	s3cfg := cfg.Server.S3
	if s3cfg.Bucket == "" {
		return artifact.NewFileStore(cfg.Server.ArtifactDir)
	}
	client, err := artifact.NewS3Client(ctx, artifact.S3Config{
		Bucket:    s3cfg.Bucket,
		Prefix:    s3cfg.Prefix,
		Region:    s3cfg.Region,
		Endpoint:  s3cfg.Endpoint,
		AccessKey: cfg.Secrets.S3AccessKey,
		SecretKey: cfg.Secrets.S3SecretKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w%s", err, hints.ForS3())
	}
	return artifact.NewS3Store(client, s3cfg.Bucket, s3cfg.Prefix), nil
}
