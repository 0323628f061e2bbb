package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/StuFraser/aqua-ripple/internal/domain/imagery"
	"github.com/StuFraser/aqua-ripple/internal/domain/location"
	"github.com/StuFraser/aqua-ripple/internal/domain/report"
	"github.com/StuFraser/aqua-ripple/internal/domain/waterquality"
	"github.com/StuFraser/aqua-ripple/internal/infra/archive"
	"github.com/StuFraser/aqua-ripple/internal/infra/config"
	"github.com/StuFraser/aqua-ripple/internal/infra/llm/gemini"
	"github.com/StuFraser/aqua-ripple/internal/infra/locationcache"
	"github.com/StuFraser/aqua-ripple/internal/infra/reportrepo"
	"github.com/StuFraser/aqua-ripple/internal/infra/stac/planetary"
)

func provideImageryConfig(cfg *config.Config) imagery.Config {
	return imagery.Config{
		BoxSize:      cfg.Imagery.BoxSize,
		LookbackDays: cfg.Imagery.LookbackDays,
		Collections:  cfg.Imagery.Collections,
		Query:        cfg.Imagery.Query,
		RendererURL:  cfg.Imagery.RendererURL,
	}
}

func provideCatalogClient(cfg *config.Config) *planetary.Client {
	return planetary.NewClient(planetary.Config{
		CatalogURL: cfg.Imagery.CatalogURL,
		SigningURL: cfg.Imagery.SigningURL,
		PageSize:   cfg.Imagery.PageSize,
		MaxPages:   cfg.Imagery.MaxPages,
		Timeout:    cfg.Imagery.Timeout,
	})
}

func provideGeminiClient(cfg *config.Config) (*gemini.Client, error) {
	return gemini.NewClient(gemini.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	})
}

func provideLocationConfig(cfg *config.Config) location.Config {
	return location.Config{CacheRadiusMeters: cfg.Location.CacheRadiusMeters}
}

func provideLocationCache(cfg *config.Config, logger *slog.Logger) location.Cache {
	fallback := locationcache.NewMemoryStore(cfg.Location.CacheTTL)
	if !cfg.Location.Redis.Enabled {
		return fallback
	}
	opt, err := buildValkeyOptions(cfg.Location.Redis.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
		return fallback
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory cache", "error", err)
		client.Close()
		return fallback
	}
	logger.Info("location valkey cache enabled", "addr", cfg.Location.Redis.Addr)
	return locationcache.NewValkeyStore(client, "waterbody", cfg.Location.CacheTTL)
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideReportRepository(cfg *config.Config, logger *slog.Logger) report.Repository {
	fallback := reportrepo.NewMemoryRepository()
	dsn := strings.TrimSpace(cfg.Reports.Postgres.DSN)
	if dsn == "" {
		logger.Info("reports postgres dsn not set, using memory repository")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repository", "error", err)
		return fallback
	}
	if cfg.Reports.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Reports.Postgres.MaxConns
	}
	if cfg.Reports.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Reports.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repository", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repository", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("reports postgres repository enabled")
	return reportrepo.NewPostgresRepository(pool)
}

// provideAnalysisArchive returns a nil Archive when archiving is off so the service reports it as disabled.
func provideAnalysisArchive(cfg *config.Config, logger *slog.Logger) (waterquality.Archive, error) {
	if !cfg.Archive.Enabled {
		logger.Info("analysis archive disabled")
		return nil, nil
	}
	store, err := archive.NewMinioStore(
		cfg.Archive.Endpoint,
		cfg.Archive.AccessKey,
		cfg.Archive.SecretKey,
		cfg.Archive.Bucket,
		cfg.Archive.Region,
		logger,
	)
	if err != nil {
		return nil, err
	}
	logger.Info("analysis archive enabled", "bucket", cfg.Archive.Bucket)
	return archive.New(store), nil
}
