package infra

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config — корневая структура конфигурации консоли.
// Собирается один раз при старте и передаётся в компоненты явно.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Console  ConsoleConfig  `mapstructure:"console"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig описывает настройки HTTP-сервера.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// Лимит запросов к /api с одного IP в минуту
	APIRateLimit int `mapstructure:"api_rate_limit"`
}

// Addr — адрес для ListenAndServe.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// UpstreamConfig описывает API сервиса авторизации, к которому проксирует консоль.
type UpstreamConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`

	RateLimit     float64 `mapstructure:"rate_limit"`
	RateBurst     int     `mapstructure:"rate_burst"`
	RetryAttempts uint    `mapstructure:"retry_attempts"` // 1 = без повторов

	// Настройки Circuit Breaker для вызовов бэкенда
	CBMaxRequests uint32        `mapstructure:"cb_max_requests"`
	CBInterval    time.Duration `mapstructure:"cb_interval"`
	CBTimeout     time.Duration `mapstructure:"cb_timeout"`
	CBFailures    uint32        `mapstructure:"cb_failures"`
}

// ConsoleConfig — отображение данных в страницах.
type ConsoleConfig struct {
	SessionLifetimeDays int    `mapstructure:"session_lifetime_days"`
	Timezone            string `mapstructure:"timezone"` // пусто = локальная зона процесса
}

// AuthConfig содержит пути к RSA ключам и операторов консоли.
type AuthConfig struct {
	Enabled        bool              `mapstructure:"enabled"`
	PublicKeyPath  string            `mapstructure:"public_key_path"`
	PrivateKeyPath string            `mapstructure:"private_key_path"`
	TokenTTL       time.Duration     `mapstructure:"token_ttl"`
	Operators      map[string]string `mapstructure:"operators"` // username -> bcrypt hash
	CookieSecure   bool              `mapstructure:"cookie_secure"`
	PublicKey      []byte
	PrivateKey     []byte
}

// DatabaseConfig описывает подключение к PostgreSQL для журнала действий.
type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// RedisConfig описывает подключение к Redis (Pub/Sub сигналов).
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoggerConfig настраивает поведение zap логгера.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

var (
	ErrMissingUpstreamURL = errors.New("config: upstream.base_url is required")
	ErrMissingAPIKey      = errors.New("config: upstream.api_key is required")
	ErrMissingSigningKeys = errors.New("config: auth is enabled but RSA keys are not configured")
)

// LoadConfig инициализирует конфигурацию, объединяя значения из файла и ENV.
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	// UPSTREAM_API_KEY=... перекроет upstream.api_key
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Если файла нет — работаем на ENV и дефолтах
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	// Сначала проверяем, не лежит ли сам PEM-ключ в ENV (для Docker/K8s)
	cfg.Auth.PublicKey = loadKeyResource(cfg.Auth.PublicKeyPath, "AUTH_PUBLIC_KEY_DATA")
	cfg.Auth.PrivateKey = loadKeyResource(cfg.Auth.PrivateKeyPath, "AUTH_PRIVATE_KEY_DATA")

	return &cfg, nil
}

// Validate падает при старте, если прокси не сможет работать.
// Молча пропускать вызовы бэкенда без адреса или ключа консоль не должна.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Upstream.BaseURL) == "" {
		errs = append(errs, ErrMissingUpstreamURL)
	}
	if strings.TrimSpace(c.Upstream.APIKey) == "" {
		errs = append(errs, ErrMissingAPIKey)
	}
	if c.Auth.Enabled && (len(c.Auth.PublicKey) == 0 || len(c.Auth.PrivateKey) == 0) {
		errs = append(errs, ErrMissingSigningKeys)
	}
	return errors.Join(errs...)
}

// Location — зона для форматирования дат.
func (c ConsoleConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.api_rate_limit", 300)
	// Ключи без дефолта viper не отдаёт в Unmarshal из ENV
	v.SetDefault("upstream.base_url", "")
	v.SetDefault("upstream.api_key", "")
	v.SetDefault("server.host", "")
	v.SetDefault("console.timezone", "")
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.public_key_path", "")
	v.SetDefault("auth.private_key_path", "")
	v.SetDefault("auth.cookie_secure", false)
	v.SetDefault("database.url", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("upstream.timeout", 10*time.Second)
	v.SetDefault("upstream.rate_limit", 50)
	v.SetDefault("upstream.rate_burst", 10)
	v.SetDefault("upstream.retry_attempts", 1)
	v.SetDefault("upstream.cb_max_requests", 3)
	v.SetDefault("upstream.cb_interval", 5*time.Second)
	v.SetDefault("upstream.cb_timeout", 30*time.Second)
	v.SetDefault("upstream.cb_failures", 5)
	v.SetDefault("console.session_lifetime_days", 45)
	v.SetDefault("auth.token_ttl", 12*time.Hour)
	v.SetDefault("database.max_conns", 5)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("metrics.addr", ":9090")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
}

func loadKeyResource(path string, envDataKey string) []byte {
	if data := os.Getenv(envDataKey); data != "" {
		return []byte(data)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			return data
		}
	}
	return nil
}
