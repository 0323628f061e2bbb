package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Imagery  ImageryConfig  `yaml:"imagery"`
	LLM      LLMConfig      `yaml:"llm"`
	Location LocationConfig `yaml:"location"`
	Reports  ReportsConfig  `yaml:"reports"`
	Archive  ArchiveConfig  `yaml:"archive"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// ImageryConfig describes the satellite catalog, signer and tile renderer.
type ImageryConfig struct {
	CatalogURL   string         `yaml:"catalogUrl"`
	SigningURL   string         `yaml:"signingUrl"`
	RendererURL  string         `yaml:"rendererUrl"`
	Collections  []string       `yaml:"collections"`
	Query        map[string]any `yaml:"query"`
	BoxSize      float64        `yaml:"boxSize"`
	LookbackDays int            `yaml:"lookbackDays"`
	PageSize     int            `yaml:"pageSize"`
	MaxPages     int            `yaml:"maxPages"`
	Timeout      time.Duration  `yaml:"timeout"`
}

// LLMConfig contains settings for the multimodal model.
type LLMConfig struct {
	APIKey      string        `yaml:"apiKey"`
	BaseURL     string        `yaml:"baseUrl"`
	Model       string        `yaml:"model"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// LocationConfig controls the water body lookup and its cache.
type LocationConfig struct {
	CacheRadiusMeters float64       `yaml:"cacheRadiusMeters"`
	CacheTTL          time.Duration `yaml:"cacheTtl"`
	Redis             RedisConfig   `yaml:"redis"`
}

// RedisConfig contains connection information for cache storage.
type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// ReportsConfig controls persistence of submitted water reports.
type ReportsConfig struct {
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// ArchiveConfig points at the S3-compatible bucket holding completed analyses.
type ArchiveConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("IMAGERY_CATALOG_URL"); v != "" {
		cfg.Imagery.CatalogURL = v
	}
	if v := os.Getenv("IMAGERY_SIGNING_URL"); v != "" {
		cfg.Imagery.SigningURL = v
	}
	if v := os.Getenv("IMAGERY_RENDERER_URL"); v != "" {
		cfg.Imagery.RendererURL = v
	}
	if v := os.Getenv("IMAGERY_COLLECTIONS"); v != "" {
		cfg.Imagery.Collections = splitList(v)
	}
	if v := os.Getenv("IMAGERY_QUERY"); v != "" {
		var query map[string]any
		if err := json.Unmarshal([]byte(v), &query); err == nil {
			cfg.Imagery.Query = query
		}
	}
	if v := os.Getenv("IMAGERY_BOX_SIZE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Imagery.BoxSize = parsed
		}
	}
	if v := os.Getenv("IMAGERY_LOOKBACK_DAYS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Imagery.LookbackDays = parsed
		}
	}
	if v := os.Getenv("IMAGERY_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Imagery.Timeout = parsed
		}
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" && cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.LLM.Timeout = parsed
		}
	}
	if v := os.Getenv("LOCATION_CACHE_RADIUS_METERS"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Location.CacheRadiusMeters = parsed
		}
	}
	if v := os.Getenv("LOCATION_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Location.CacheTTL = parsed
		}
	}
	if v := os.Getenv("LOCATION_REDIS_ENABLED"); v != "" {
		cfg.Location.Redis.Enabled = parseBool(v)
	}
	if v := os.Getenv("LOCATION_REDIS_ADDR"); v != "" {
		cfg.Location.Redis.Addr = v
	}
	if v := os.Getenv("REPORTS_POSTGRES_DSN"); v != "" {
		cfg.Reports.Postgres.DSN = v
	}
	if v := os.Getenv("REPORTS_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Reports.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("REPORTS_POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Reports.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("ARCHIVE_ENABLED"); v != "" {
		cfg.Archive.Enabled = parseBool(v)
	}
	if v := os.Getenv("ARCHIVE_ENDPOINT"); v != "" {
		cfg.Archive.Endpoint = v
	}
	if v := os.Getenv("ARCHIVE_ACCESS_KEY"); v != "" {
		cfg.Archive.AccessKey = v
	}
	if v := os.Getenv("ARCHIVE_SECRET_KEY"); v != "" {
		cfg.Archive.SecretKey = v
	}
	if v := os.Getenv("ARCHIVE_BUCKET"); v != "" {
		cfg.Archive.Bucket = v
	}
	if v := os.Getenv("ARCHIVE_REGION"); v != "" {
		cfg.Archive.Region = v
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:        ":8000",
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   120 * time.Second,
			AllowedOrigins: []string{"http://localhost:5173"},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 30,
				Burst:             10,
			},
		},
		Imagery: ImageryConfig{
			CatalogURL:  "https://planetarycomputer.microsoft.com/api/stac/v1",
			SigningURL:  "https://planetarycomputer.microsoft.com/api/sas/v1",
			RendererURL: "https://planetarycomputer.microsoft.com/api/data/v1",
			Collections: []string{"sentinel-2-l2a"},
			Query: map[string]any{
				"eo:cloud_cover": map[string]any{"lt": 20},
			},
			BoxSize:      0.01,
			LookbackDays: 365,
			PageSize:     100,
			MaxPages:     10,
			Timeout:      30 * time.Second,
		},
		LLM: LLMConfig{
			BaseURL:     "https://generativelanguage.googleapis.com/v1beta/openai",
			Model:       "gemini-2.5-flash",
			Temperature: 0.2,
			Timeout:     90 * time.Second,
		},
		Location: LocationConfig{
			CacheRadiusMeters: 100,
			CacheTTL:          30 * 24 * time.Hour,
			Redis: RedisConfig{
				Enabled: false,
				Addr:    "",
			},
		},
		Reports: ReportsConfig{
			Postgres: PostgresConfig{
				DSN:      "",
				MaxConns: 4,
				MinConns: 0,
			},
		},
		Archive: ArchiveConfig{
			Enabled: false,
			Bucket:  "aquaripple-analyses",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if strings.TrimSpace(c.Imagery.CatalogURL) == "" {
		return errors.New("imagery.catalogUrl cannot be empty")
	}
	if strings.TrimSpace(c.Imagery.SigningURL) == "" {
		return errors.New("imagery.signingUrl cannot be empty")
	}
	if strings.TrimSpace(c.Imagery.RendererURL) == "" {
		return errors.New("imagery.rendererUrl cannot be empty")
	}
	if len(c.Imagery.Collections) == 0 {
		return errors.New("imagery.collections cannot be empty")
	}
	if c.Imagery.BoxSize <= 0 {
		return errors.New("imagery.boxSize must be positive")
	}
	if c.Imagery.LookbackDays <= 0 {
		return errors.New("imagery.lookbackDays must be positive")
	}
	if c.Imagery.PageSize <= 0 {
		return errors.New("imagery.pageSize must be positive")
	}
	if c.Imagery.MaxPages <= 0 {
		return errors.New("imagery.maxPages must be positive")
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model cannot be empty")
	}
	if c.Location.CacheRadiusMeters < 0 {
		return errors.New("location.cacheRadiusMeters cannot be negative")
	}
	if c.Location.CacheTTL < 0 {
		return errors.New("location.cacheTtl cannot be negative")
	}
	if c.Location.Redis.Enabled && strings.TrimSpace(c.Location.Redis.Addr) == "" {
		return errors.New("location.redis.addr cannot be empty when redis cache is enabled")
	}
	if c.Archive.Enabled {
		if strings.TrimSpace(c.Archive.Endpoint) == "" {
			return errors.New("archive.endpoint cannot be empty when the archive is enabled")
		}
		if strings.TrimSpace(c.Archive.Bucket) == "" {
			return errors.New("archive.bucket cannot be empty when the archive is enabled")
		}
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	return nil
}
