package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config хранит все настройки приложения
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Storage    StorageConfig
	AI         AIConfig
	Background BackgroundRemovalConfig
	Import     ImportConfig
	Email      EmailConfig
	Cache      CacheConfig
	Log        LogConfig
	WebSocket  WebSocketConfig
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port           string
	ReadTimeout    int      `mapstructure:"read_timeout"`
	WriteTimeout   int      `mapstructure:"write_timeout"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Mode: "single", "sentinel", "cluster". По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: список адресов (хост:порт). Для 'single' используется первый.
	Addrs []string `mapstructure:"addrs"`

	// Addr: адрес для режима 'single', если Addrs пустой.
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: только для режима "sentinel"
	MasterName string `mapstructure:"master_name"`

	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"` // мс
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"` // мс
}

// JWTConfig содержит настройки JWT.
// Secret совпадает с секретом провайдера аутентификации мобильного приложения,
// поэтому токены клиентов проверяются тем же ключом.
type JWTConfig struct {
	Secret        string `mapstructure:"secret"`
	ExpirationHrs int    `mapstructure:"expiration_hrs"`
	Issuer        string `mapstructure:"issuer"`
}

// StorageConfig содержит настройки S3-совместимого хранилища изображений
type StorageConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	PublicBaseURL   string `mapstructure:"public_base_url"`
	PathStyle       bool   `mapstructure:"path_style"`
}

// AIConfig содержит настройки vision-модели для анализа изображений товаров
type AIConfig struct {
	Provider   string `mapstructure:"provider"` // "openai" | "anthropic"
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	Model      string `mapstructure:"model"`
	TimeoutSec int    `mapstructure:"timeout_sec"`
}

// BackgroundRemovalConfig содержит настройки внешнего сервиса удаления фона
type BackgroundRemovalConfig struct {
	APIURL     string `mapstructure:"api_url"`
	APIKey     string `mapstructure:"api_key"`
	TimeoutSec int    `mapstructure:"timeout_sec"`
}

// ImportConfig содержит настройки массового импорта товаров
type ImportConfig struct {
	FallbackCategoryID uint  `mapstructure:"fallback_category_id"`
	MaxRows            int   `mapstructure:"max_rows"`
	MaxFileSizeBytes   int64 `mapstructure:"max_file_size_bytes"`
	ImageTimeoutSec    int   `mapstructure:"image_timeout_sec"`
	RehostImages       bool  `mapstructure:"rehost_images"`
}

// EmailConfig содержит настройки отправки писем через Resend
type EmailConfig struct {
	ResendAPIKey string `mapstructure:"resend_api_key"`
	From         string `mapstructure:"from"`
}

// CacheConfig содержит настройки кеша главной страницы
type CacheConfig struct {
	HomeTTLSec int `mapstructure:"home_ttl_sec"`
}

// LogConfig содержит настройки логирования
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" | "console"
}

// WebSocketConfig содержит настройки realtime-подсистемы
type WebSocketConfig struct {
	ClusterEnabled bool   `mapstructure:"cluster_enabled"`
	Channel        string `mapstructure:"channel"`
	SendBuffer     int    `mapstructure:"send_buffer"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// HomeTTL возвращает время жизни кеша главной страницы
func (c CacheConfig) HomeTTL() time.Duration {
	if c.HomeTTLSec <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.HomeTTLSec) * time.Second
}

func setDefaults(vip *viper.Viper) {
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.read_timeout", 15)
	vip.SetDefault("server.write_timeout", 60)
	vip.SetDefault("server.allowed_origins", []string{"http://localhost:5173", "http://localhost:3000"})
	vip.SetDefault("database.sslmode", "disable")
	vip.SetDefault("redis.mode", "single")
	vip.SetDefault("jwt.expiration_hrs", 24)
	vip.SetDefault("jwt.issuer", "storefront-api")
	vip.SetDefault("storage.region", "us-east-1")
	vip.SetDefault("ai.provider", "openai")
	vip.SetDefault("ai.timeout_sec", 60)
	vip.SetDefault("background.timeout_sec", 60)
	vip.SetDefault("import.fallback_category_id", 1)
	vip.SetDefault("import.max_rows", 5000)
	vip.SetDefault("import.max_file_size_bytes", 10*1024*1024)
	vip.SetDefault("import.image_timeout_sec", 15)
	vip.SetDefault("import.rehost_images", true)
	vip.SetDefault("cache.home_ttl_sec", 300)
	vip.SetDefault("log.level", "info")
	vip.SetDefault("log.format", "json")
	vip.SetDefault("websocket.channel", "storefront:orders")
	vip.SetDefault("websocket.send_buffer", 32)
}

// Load загружает конфигурацию из файла и переменных окружения
func Load(configPath string, log *zap.Logger) (*Config, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vip := viper.New() // отдельный экземпляр, без глобального состояния

	setDefaults(vip)

	// Привязываем переменные окружения явно
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")

	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	vip.BindEnv("jwt.secret", "JWT_SECRET")
	vip.BindEnv("jwt.expiration_hrs", "JWT_EXPIRATION_HRS")

	vip.BindEnv("storage.endpoint", "STORAGE_ENDPOINT")
	vip.BindEnv("storage.region", "STORAGE_REGION")
	vip.BindEnv("storage.bucket", "STORAGE_BUCKET")
	vip.BindEnv("storage.access_key_id", "STORAGE_ACCESS_KEY_ID")
	vip.BindEnv("storage.secret_access_key", "STORAGE_SECRET_ACCESS_KEY")
	vip.BindEnv("storage.public_base_url", "STORAGE_PUBLIC_BASE_URL")

	vip.BindEnv("ai.provider", "AI_PROVIDER")
	vip.BindEnv("ai.api_key", "AI_API_KEY")
	vip.BindEnv("ai.base_url", "AI_BASE_URL")
	vip.BindEnv("ai.model", "AI_MODEL")

	vip.BindEnv("background.api_url", "BG_REMOVAL_API_URL")
	vip.BindEnv("background.api_key", "BG_REMOVAL_API_KEY")

	vip.BindEnv("email.resend_api_key", "RESEND_API_KEY")
	vip.BindEnv("email.from", "EMAIL_FROM")

	vip.BindEnv("server.port", "SERVER_PORT")
	vip.BindEnv("log.level", "LOG_LEVEL")
	vip.BindEnv("websocket.cluster_enabled", "WEBSOCKET_CLUSTER_ENABLED")

	if configPath != "" {
		vip.SetConfigFile(configPath)
		// Файла может не быть: переменные окружения уже привязаны
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok || os.IsNotExist(err) {
				log.Info("config file not found, using env/defaults", zap.String("path", configPath))
			} else {
				log.Warn("failed to read config file", zap.String("path", configPath), zap.Error(err))
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Debug("configuration loaded",
		zap.String("database_host", cfg.Database.Host),
		zap.String("database_name", cfg.Database.DBName),
		zap.String("redis_mode", cfg.Redis.Mode),
		zap.String("server_port", cfg.Server.Port),
		zap.Bool("storage_configured", cfg.Storage.Bucket != ""),
		zap.Bool("ai_configured", cfg.AI.APIKey != ""),
		zap.Bool("email_configured", cfg.Email.ResendAPIKey != ""),
	)

	return &cfg, nil
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required (check JWT_SECRET env var)")
	}
	if c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "" {
		return fmt.Errorf("database configuration (host, dbname, user) is incomplete (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if c.Import.MaxRows <= 0 {
		return fmt.Errorf("import.max_rows must be positive")
	}
	switch c.AI.Provider {
	case "", "openai", "anthropic":
	default:
		return fmt.Errorf("unknown ai.provider %q", c.AI.Provider)
	}
	if c.Storage.Bucket != "" && c.Storage.PublicBaseURL == "" {
		return fmt.Errorf("storage.public_base_url is required when storage.bucket is set")
	}
	return nil
}
