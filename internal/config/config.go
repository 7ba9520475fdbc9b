package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// 支持的存储后端
const (
	BackendSQLite   = "sqlite"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr string `envconfig:"LISTEN_ADDR"`
	Port       string `envconfig:"PORT" default:"8080"`
	GinMode    string `envconfig:"GIN_MODE" default:"release"`

	// --- 存储 ---
	StoreBackend     string `envconfig:"STORE_BACKEND" default:"sqlite"`
	DatabasePath     string `envconfig:"DATABASE_PATH" default:"fitquest.db"`
	DataFilePath     string `envconfig:"DATA_FILE_PATH" default:"data/data.json"`
	RedisAddr        string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword    string `envconfig:"REDIS_PASSWORD"`
	RedisDB          int    `envconfig:"REDIS_DB" default:"0"`
	RedisKeyPrefix   string `envconfig:"REDIS_KEY_PREFIX" default:"fitquest:"`
	PostgresDSN      string `envconfig:"POSTGRES_DSN"`
	PostgresMaxConns int32  `envconfig:"POSTGRES_MAX_CONNS" default:"10"`

	// --- 日志 ---
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	LogPath       string `envconfig:"LOG_PATH" default:"logs/fitquest.log"`
	LogMaxSizeMB  int    `envconfig:"LOG_MAX_SIZE_MB" default:"50"`
	LogMaxBackups int    `envconfig:"LOG_MAX_BACKUPS" default:"5"`
	LogMaxAgeDays int    `envconfig:"LOG_MAX_AGE_DAYS" default:"30"`
	LogCompress   bool   `envconfig:"LOG_COMPRESS" default:"true"`

	// --- HTTP ---
	AllowedOrigins     []string `envconfig:"ALLOWED_ORIGINS" default:"*"`
	RateLimitPerMinute int      `envconfig:"RATE_LIMIT_PER_MINUTE" default:"30"`

	// --- 业务 ---
	AppTimezone       string `envconfig:"APP_TIMEZONE" default:"Asia/Shanghai"`
	SettlementEnabled bool   `envconfig:"SETTLEMENT_ENABLED" default:"true"`
	SettlementCron    string `envconfig:"SETTLEMENT_CRON" default:"5 0 1 * *"`
}

// Load 从环境变量读取应用配置，缺失项使用默认值。
func Load() (AppConfig, error) {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("load config: %w", err)
	}

	cfg.Port = strings.TrimSpace(cfg.Port)
	cfg.ListenAddr = strings.TrimSpace(cfg.ListenAddr)
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = fmt.Sprintf(":%s", cfg.Port)
	}
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	if cfg.StoreBackend == "" {
		cfg.StoreBackend = BackendSQLite
	}

	origins := make([]string, 0, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	cfg.AllowedOrigins = origins

	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate 检查互相依赖的配置项
func (c AppConfig) Validate() error {
	switch c.StoreBackend {
	case BackendSQLite, BackendFile, BackendRedis:
	case BackendPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return fmt.Errorf("POSTGRES_DSN is required when STORE_BACKEND=postgres")
		}
		if c.PostgresMaxConns <= 0 {
			return fmt.Errorf("POSTGRES_MAX_CONNS must be > 0")
		}
	default:
		return fmt.Errorf("unsupported STORE_BACKEND %q", c.StoreBackend)
	}

	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be >= 0")
	}
	if _, err := time.LoadLocation(c.AppTimezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.AppTimezone, err)
	}
	return nil
}

// Location 返回业务时区，非法值回退到 UTC
func (c AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.AppTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
