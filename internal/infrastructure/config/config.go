package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// DefaultJWTSecret is the development signing secret. It is refused in production.
const DefaultJWTSecret = "change-me-development-secret-please-rotate"

// Config is the server configuration. Keys are the lowercased dotted
// paths of the mapstructure tags, e.g. database.max_open_conns.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Log       LogConfig       `mapstructure:"log"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Printing  PrintingConfig  `mapstructure:"printing"`
	Mail      MailConfig      `mapstructure:"mail"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Swagger   SwaggerConfig   `mapstructure:"swagger"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Auth      AuthConfig      `mapstructure:"auth"`

	file string
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr or a file path
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`
}

// IsProduction reports whether the app runs in production
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// DatabaseConfig selects postgres or a sqlite file and sizes the pool
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	SQLitePath      string `mapstructure:"sqlite_path"`
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutes
	// SlowQueryMs of 0 turns slow query warnings off
	SlowQueryMs int `mapstructure:"slow_query_ms"`
	// LogSQLValues logs bind values; off by default so customer details stay out of logs
	LogSQLValues bool `mapstructure:"log_sql_values"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig signs back-office tokens. An empty RefreshSecret reuses Secret.
type JWTConfig struct {
	Secret                 string        `mapstructure:"secret"`
	RefreshSecret          string        `mapstructure:"refresh_secret"`
	AccessTokenExpiration  time.Duration `mapstructure:"access_token_expiration"`
	RefreshTokenExpiration time.Duration `mapstructure:"refresh_token_expiration"`
	Issuer                 string        `mapstructure:"issuer"`
	MaxRefreshCount        int           `mapstructure:"max_refresh_count"`
}

type HTTPConfig struct {
	ReadTimeout           time.Duration `mapstructure:"read_timeout"`
	WriteTimeout          time.Duration `mapstructure:"write_timeout"`
	IdleTimeout           time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout       time.Duration `mapstructure:"shutdown_timeout"`
	RequestTimeout        time.Duration `mapstructure:"request_timeout"`
	MaxHeaderBytes        int           `mapstructure:"max_header_bytes"`
	MaxBodySize           int64         `mapstructure:"max_body_size"`
	MaxUploadSize         int64         `mapstructure:"max_upload_size"`
	RateLimitEnabled      bool          `mapstructure:"rate_limit_enabled"`
	RateLimitRPS          float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst        int           `mapstructure:"rate_limit_burst"`
	AuthRateLimitEnabled  bool          `mapstructure:"auth_rate_limit_enabled"`
	AuthRateLimitRPS      float64       `mapstructure:"auth_rate_limit_rps"`
	AuthRateLimitBurst    int           `mapstructure:"auth_rate_limit_burst"`
	CORSAllowOrigins      []string      `mapstructure:"cors_allow_origins"`
	CORSAllowMethods      []string      `mapstructure:"cors_allow_methods"`
	CORSAllowHeaders      []string      `mapstructure:"cors_allow_headers"`
	TrustedProxies        []string      `mapstructure:"trusted_proxies"`
	SecurityHeadersEnable bool          `mapstructure:"security_headers"`
}

// StorageConfig points product images at S3 or an S3-compatible store
type StorageConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Bucket          string        `mapstructure:"bucket"`
	Region          string        `mapstructure:"region"`
	Endpoint        string        `mapstructure:"endpoint"` // MinIO and friends
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	UsePathStyle    bool          `mapstructure:"use_path_style"`
	PresignExpiry   time.Duration `mapstructure:"presign_expiry"`
	PublicBaseURL   string        `mapstructure:"public_base_url"`
}

// PrintingConfig drives headless Chrome for invoice PDFs
type PrintingConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	RemoteURL     string        `mapstructure:"remote_url"` // ws://host:9222, empty to launch locally
	ChromePath    string        `mapstructure:"chrome_path"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxConcurrent int           `mapstructure:"max_concurrent"`
}

type MailConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	Username          string        `mapstructure:"username"`
	Password          string        `mapstructure:"password"`
	From              string        `mapstructure:"from"`
	RetryAttempts     int           `mapstructure:"retry_attempts"`
	RetryDelay        time.Duration `mapstructure:"retry_delay"`
	NotifyBillCreated bool          `mapstructure:"notify_bill_created"`
}

// KafkaConfig forwards domain events to a topic
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type CacheConfig struct {
	RateTTL time.Duration `mapstructure:"rate_ttl"`
	CartTTL time.Duration `mapstructure:"cart_ttl"`
}

type SchedulerConfig struct {
	Enabled                bool          `mapstructure:"enabled"`
	EstimateExpiryInterval time.Duration `mapstructure:"estimate_expiry_interval"`
	JobTimeout             time.Duration `mapstructure:"job_timeout"`
	BatchSize              int           `mapstructure:"batch_size"`
}

type SwaggerConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type TelemetryConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	CollectorEndpoint string        `mapstructure:"collector_endpoint"` // OTLP gRPC, host:port
	SamplingRatio     float64       `mapstructure:"sampling_ratio"`
	ServiceName       string        `mapstructure:"service_name"`
	Insecure          bool          `mapstructure:"insecure"`
	MetricsEnabled    bool          `mapstructure:"metrics_enabled"`
	MetricsInterval   time.Duration `mapstructure:"metrics_interval"`
	LogsEnabled       bool          `mapstructure:"logs_enabled"`
	LogsExportLevel   string        `mapstructure:"logs_export_level"`
	DBTraceEnabled    bool          `mapstructure:"db_trace_enabled"`
	ProfilingEnabled  bool          `mapstructure:"profiling_enabled"`
	PyroscopeURL      string        `mapstructure:"pyroscope_url"`
}

// AuthConfig holds the first-run admin account
type AuthConfig struct {
	BootstrapUsername string `mapstructure:"bootstrap_username"`
	BootstrapPassword string `mapstructure:"bootstrap_password"`
	BootstrapEmail    string `mapstructure:"bootstrap_email"`
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with JEWEL_ prefix (e.g., JEWEL_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/jewelstore")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg, err := build(v)
	if err != nil {
		return nil, err
	}
	cfg.file = v.ConfigFileUsed()
	return cfg, nil
}

// File returns the config file in use, empty when running on env and defaults
func (c *Config) File() string {
	return c.file
}

// Watch reloads the config file on change and passes the new config to onChange.
// It does nothing when no config file was read. Invalid edits are reported to onError and skipped.
func (c *Config) Watch(onChange func(*Config), onError func(error)) bool {
	if c.file == "" {
		return false
	}
	v := newViper()
	v.SetConfigFile(c.file)
	if err := v.ReadInConfig(); err != nil {
		if onError != nil {
			onError(err)
		}
		return false
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		next, err := build(v)
		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("reload %s: %w", e.Name, err))
			}
			return
		}
		next.file = c.file
		onChange(next)
	})
	v.WatchConfig()
	return true
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("JEWEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Every key needs a default so env-only values reach Unmarshal
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	return v
}

var defaults = map[string]any{
	"app.name": "jewelstore",
	"app.env":  "development",
	"app.port": "8080",

	"database.driver":             "postgres",
	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.password":           "",
	"database.dbname":             "jewelstore",
	"database.sslmode":            "disable",
	"database.sqlite_path":        "jewelstore.db",
	"database.auto_migrate":       false,
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  60,
	"database.conn_max_idle_time": 30,
	"database.slow_query_ms":      200,
	"database.log_sql_values":     false,

	"redis.enabled":  false,
	"redis.host":     "localhost",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,

	"jwt.secret":                   DefaultJWTSecret,
	"jwt.refresh_secret":           "",
	"jwt.access_token_expiration":  "15m",
	"jwt.refresh_token_expiration": "168h",
	"jwt.issuer":                   "jewelstore",
	"jwt.max_refresh_count":        10,

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"http.read_timeout":            "15s",
	"http.write_timeout":           "30s",
	"http.idle_timeout":            "60s",
	"http.shutdown_timeout":        "10s",
	"http.request_timeout":         "30s",
	"http.max_header_bytes":        1 << 20,
	"http.max_body_size":           1 << 20,
	"http.max_upload_size":         10 << 20,
	"http.rate_limit_enabled":      false,
	"http.rate_limit_rps":          20.0,
	"http.rate_limit_burst":        40,
	"http.auth_rate_limit_enabled": false,
	"http.auth_rate_limit_rps":     0.1, // one login every 10s sustained
	"http.auth_rate_limit_burst":   5,
	// no origins means no cross-origin requests until configured
	"http.cors_allow_origins": []string{},
	"http.cors_allow_methods": []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
	"http.cors_allow_headers": []string{"Content-Type", "Authorization", "X-Request-ID", "X-Cart-ID"},
	"http.trusted_proxies":    []string{},
	"http.security_headers":   false,

	"storage.enabled":           false,
	"storage.bucket":            "",
	"storage.region":            "us-east-1",
	"storage.endpoint":          "",
	"storage.access_key_id":     "",
	"storage.secret_access_key": "",
	"storage.use_path_style":    false,
	"storage.presign_expiry":    "15m",
	"storage.public_base_url":   "",

	"printing.enabled":        false,
	"printing.remote_url":     "",
	"printing.chrome_path":    "",
	"printing.timeout":        "30s",
	"printing.max_concurrent": 2,

	"mail.enabled":             false,
	"mail.host":                "",
	"mail.port":                587,
	"mail.username":            "",
	"mail.password":            "",
	"mail.from":                "",
	"mail.retry_attempts":      3,
	"mail.retry_delay":         "2s",
	"mail.notify_bill_created": false,

	"kafka.enabled":       false,
	"kafka.brokers":       []string{},
	"kafka.topic":         "jewelstore.events",
	"kafka.batch_timeout": "50ms",
	"kafka.write_timeout": "10s",

	"cache.rate_ttl": "10m",
	"cache.cart_ttl": "168h",

	"scheduler.enabled":                  false,
	"scheduler.estimate_expiry_interval": "1h",
	"scheduler.job_timeout":              "5m",
	"scheduler.batch_size":               200,

	"swagger.enabled": false,

	"telemetry.enabled":            false,
	"telemetry.collector_endpoint": "localhost:4317",
	"telemetry.sampling_ratio":     1.0,
	"telemetry.service_name":       "jewelstore",
	"telemetry.insecure":           false,
	"telemetry.metrics_enabled":    false,
	"telemetry.metrics_interval":   "60s",
	"telemetry.logs_enabled":       false,
	"telemetry.logs_export_level":  "info",
	"telemetry.db_trace_enabled":   false,
	"telemetry.profiling_enabled":  false,
	"telemetry.pyroscope_url":      "http://localhost:4040",

	"auth.bootstrap_username": "admin",
	"auth.bootstrap_password": "",
	"auth.bootstrap_email":    "",
}

func build(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate reports every problem at once
func (c *Config) validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		fail("database.driver must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.Database.MaxOpenConns <= 0 {
		fail("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 || c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		fail("database.max_idle_conns (%d) must be between 0 and database.max_open_conns (%d); it cannot exceed the open limit",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Database.SlowQueryMs < 0 {
		fail("database.slow_query_ms cannot be negative")
	}
	if c.Storage.Enabled && c.Storage.Bucket == "" {
		fail("storage.bucket is required when storage is enabled")
	}
	if c.Mail.Enabled && (c.Mail.Host == "" || c.Mail.From == "") {
		fail("mail.host and mail.from are required when mail is enabled")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		fail("kafka.brokers is required when kafka is enabled")
	}
	if r := c.Telemetry.SamplingRatio; r < 0 || r > 1 {
		fail("telemetry.sampling_ratio must be within [0, 1], got %g", r)
	}

	if c.App.IsProduction() {
		switch {
		case c.JWT.Secret == DefaultJWTSecret:
			fail("jwt.secret must be set in production")
		case len(c.JWT.Secret) < 32:
			fail("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Driver == "sqlite" {
			fail("database.driver sqlite is not supported in production")
		}
		if c.Database.Password == "" {
			fail("database.password is required in production")
		}
		if slices.Contains(c.HTTP.CORSAllowOrigins, "*") {
			fail("http.cors_allow_origins cannot contain * in production")
		}
	}
	return errors.Join(errs...)
}

// DSN builds a postgres URL with user and password escaped
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
