package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Kilat-Home-Services/service-booking/internal/platform/config"
)

// Submission modes.
const (
	SubmitRemote = "remote"
	SubmitLocal  = "local"
)

// Session stores.
const (
	SessionMemory = "memory"
	SessionRedis  = "redis"
)

// UpstreamConfig addresses one of the external HTTP collaborators.
type UpstreamConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port        string
	AppEnv      string
	DBConfig    config.DatabaseConfig
	JWTConfig   config.JWTConfig
	KafkaConfig config.KafkaConfig
	RedisConfig config.RedisConfig

	Catalog    UpstreamConfig
	BookingAPI UpstreamConfig

	SubmitMode      string
	SessionStore    string
	SessionTTL      time.Duration
	CatalogCacheTTL time.Duration
	PlatformFeePct  int64

	RateLimitPerMinute int
	RateLimitBurst     int
	CORSOrigins        []string
	ConsumeCatalog     bool
}

// Load reads configuration from BOOKING_* environment variables.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("BOOKING")
	if err != nil {
		return nil, err
	}

	v.SetDefault("db_name", "booking")
	v.SetDefault("catalog_api_url", "http://localhost:8081")
	v.SetDefault("catalog_api_key", "")
	v.SetDefault("catalog_api_timeout", "5s")
	v.SetDefault("booking_api_url", "http://localhost:8082")
	v.SetDefault("booking_api_key", "")
	v.SetDefault("booking_api_timeout", "8s")
	v.SetDefault("submit_mode", SubmitRemote)
	v.SetDefault("session_store", SessionMemory)
	v.SetDefault("session_ttl", "2h")
	v.SetDefault("catalog_cache_ttl", "5m")
	v.SetDefault("platform_fee_pct", 10)
	v.SetDefault("rate_limit_per_minute", 120)
	v.SetDefault("rate_limit_burst", 20)
	v.SetDefault("cors_origins", "")
	v.SetDefault("consume_catalog_events", false)

	cfg := &ServiceConfig{
		Port:        config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:      config.GetAppEnv(v),
		DBConfig:    config.LoadDatabaseConfig(v, "DB_NAME"),
		JWTConfig:   config.LoadJWTConfig(v),
		KafkaConfig: config.LoadKafkaConfig(v),
		RedisConfig: config.LoadRedisConfig(v),
		Catalog: UpstreamConfig{
			BaseURL: v.GetString("catalog_api_url"),
			APIKey:  v.GetString("catalog_api_key"),
			Timeout: v.GetDuration("catalog_api_timeout"),
		},
		BookingAPI: UpstreamConfig{
			BaseURL: v.GetString("booking_api_url"),
			APIKey:  v.GetString("booking_api_key"),
			Timeout: v.GetDuration("booking_api_timeout"),
		},
		SubmitMode:         strings.ToLower(v.GetString("submit_mode")),
		SessionStore:       strings.ToLower(v.GetString("session_store")),
		SessionTTL:         v.GetDuration("session_ttl"),
		CatalogCacheTTL:    v.GetDuration("catalog_cache_ttl"),
		PlatformFeePct:     v.GetInt64("platform_fee_pct"),
		RateLimitPerMinute: v.GetInt("rate_limit_per_minute"),
		RateLimitBurst:     v.GetInt("rate_limit_burst"),
		CORSOrigins:        splitList(v.GetString("cors_origins")),
		ConsumeCatalog:     v.GetBool("consume_catalog_events"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ServiceConfig) validate() error {
	switch c.SubmitMode {
	case SubmitRemote, SubmitLocal:
	default:
		return fmt.Errorf("invalid submit_mode %q", c.SubmitMode)
	}
	switch c.SessionStore {
	case SessionMemory:
	case SessionRedis:
		if c.RedisConfig.Addr == "" {
			return fmt.Errorf("session_store %q requires redis_addr", c.SessionStore)
		}
	default:
		return fmt.Errorf("invalid session_store %q", c.SessionStore)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive")
	}
	if c.PlatformFeePct < 0 || c.PlatformFeePct > 100 {
		return fmt.Errorf("platform_fee_pct must be between 0 and 100")
	}
	if c.JWTConfig.Secret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
