package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names an optional YAML file applied before environment
// overrides.
const ConfigFileEnv = "DISCLOSURE_CONFIG_FILE"

// Config is the full process configuration. Empty connection URLs select the
// in-memory implementations, which keeps local runs dependency free.
type Config struct {
	Environment   string              `yaml:"environment"`
	Log           LogConfig           `yaml:"log"`
	Server        Server              `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Kafka         KafkaConfig         `yaml:"kafka"`
	Auth          AuthConfig          `yaml:"auth"`
	Signing       SigningConfig       `yaml:"signing"`
	Sharing       SharingConfig       `yaml:"sharing"`
	Ledger        LedgerConfig        `yaml:"ledger"`
	Collaborators CollaboratorsConfig `yaml:"collaborators"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	// PublicBaseURL is the buyer-facing app; share links are built from it.
	PublicBaseURL string `yaml:"public_base_url"`
}

type DatabaseConfig struct {
	URL             string        `yaml:"url"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	LedgerMaxConns  int32         `yaml:"ledger_max_conns"`
	MigrateOnStart  bool          `yaml:"migrate_on_start"`
	TxTimeout       time.Duration `yaml:"tx_timeout"`
}

type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type KafkaConfig struct {
	Brokers           []string `yaml:"brokers"`
	LedgerTopic       string   `yaml:"ledger_topic"`
	CreateTopic       bool     `yaml:"create_topic"`
	Partitions        int32    `yaml:"partitions"`
	ReplicationFactor int16    `yaml:"replication_factor"`
}

type AuthConfig struct {
	JWTSigningKey string `yaml:"jwt_signing_key"`
	JWTIssuer     string `yaml:"jwt_issuer"`
	JWTAudience   string `yaml:"jwt_audience"`
}

type SigningConfig struct {
	// CompletionThreshold is the minimum completion percentage for signing.
	CompletionThreshold int `yaml:"completion_threshold"`
}

type SharingConfig struct {
	// PublicRequestsPerWindow limits anonymous token requests per client IP.
	PublicRequestsPerWindow int           `yaml:"public_requests_per_window"`
	PublicWindow            time.Duration `yaml:"public_window"`
}

type LedgerConfig struct {
	BufferSize       int           `yaml:"buffer_size"`
	BreakerThreshold int           `yaml:"breaker_threshold"`
	BreakerCooldown  time.Duration `yaml:"breaker_cooldown"`
	TimelineMaxLimit int           `yaml:"timeline_max_limit"`
}

type CollaboratorsConfig struct {
	NotifierWebhookURL string        `yaml:"notifier_webhook_url"`
	RendererURL        string        `yaml:"renderer_url"`
	DirectoryURL       string        `yaml:"directory_url"`
	HTTPTimeout        time.Duration `yaml:"http_timeout"`
	DirectoryCacheSize int           `yaml:"directory_cache_size"`
}

// Defaults returns the development configuration.
func Defaults() Config {
	return Config{
		Environment: "development",
		Log:         LogConfig{Level: "info", Format: "json"},
		Server: Server{
			Addr:              ":8080",
			ReadHeaderTimeout: 5 * time.Second,
			RequestTimeout:    15 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			PublicBaseURL:     "http://localhost:3000",
		},
		Database: DatabaseConfig{
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			LedgerMaxConns:  10,
			MigrateOnStart:  true,
			TxTimeout:       5 * time.Second,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			LedgerTopic:       "disclosure.ledger",
			Partitions:        3,
			ReplicationFactor: 1,
		},
		Auth: AuthConfig{
			// Use a default for development - should be overridden in production
			JWTSigningKey: "dev-secret-key-change-in-production",
		},
		Signing: SigningConfig{CompletionThreshold: 80},
		Sharing: SharingConfig{
			PublicRequestsPerWindow: 30,
			PublicWindow:            time.Minute,
		},
		Ledger: LedgerConfig{
			BufferSize:       1024,
			BreakerThreshold: 5,
			BreakerCooldown:  30 * time.Second,
			TimelineMaxLimit: 200,
		},
		Collaborators: CollaboratorsConfig{
			HTTPTimeout:        5 * time.Second,
			DirectoryCacheSize: 1024,
		},
	}
}

// FromEnv builds a Config from defaults and environment variables so main
// stays lean.
func FromEnv() Config {
	cfg := Defaults()
	applyEnv(&cfg)
	return cfg
}

// Load applies defaults, then the optional YAML file, then environment
// overrides, and validates the result.
func Load() (Config, error) {
	cfg := Defaults()
	if path := os.Getenv(ConfigFileEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the services cannot run with.
func (c Config) Validate() error {
	if c.Signing.CompletionThreshold < 0 || c.Signing.CompletionThreshold > 100 {
		return fmt.Errorf("SIGNING_COMPLETION_THRESHOLD must be between 0 and 100, got %d", c.Signing.CompletionThreshold)
	}
	if c.Ledger.BufferSize <= 0 {
		return fmt.Errorf("LEDGER_BUFFER_SIZE must be positive")
	}
	if c.Auth.JWTSigningKey == "" {
		return fmt.Errorf("JWT_SIGNING_KEY is required")
	}
	if c.Environment == "production" && c.Auth.JWTSigningKey == Defaults().Auth.JWTSigningKey {
		return fmt.Errorf("JWT_SIGNING_KEY must be set in production")
	}
	if c.Sharing.PublicRequestsPerWindow <= 0 || c.Sharing.PublicWindow <= 0 {
		return fmt.Errorf("public rate limit must be positive")
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.Log.Format)
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Environment, "ENVIRONMENT")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")

	setString(&cfg.Server.Addr, "DISCLOSURE_ADDR")
	setDuration(&cfg.Server.RequestTimeout, "REQUEST_TIMEOUT")
	setDuration(&cfg.Server.ShutdownTimeout, "SHUTDOWN_TIMEOUT")
	setString(&cfg.Server.PublicBaseURL, "PUBLIC_BASE_URL")

	setString(&cfg.Database.URL, "DATABASE_URL")
	setInt(&cfg.Database.MaxOpenConns, "DB_MAX_OPEN_CONNS")
	setInt(&cfg.Database.MaxIdleConns, "DB_MAX_IDLE_CONNS")
	setBool(&cfg.Database.MigrateOnStart, "DB_MIGRATE_ON_START")
	setDuration(&cfg.Database.TxTimeout, "DB_TX_TIMEOUT")
	if v, ok := lookupInt("LEDGER_DB_MAX_CONNS"); ok {
		cfg.Database.LedgerMaxConns = int32(v)
	}

	setString(&cfg.Redis.URL, "REDIS_URL")
	setInt(&cfg.Redis.PoolSize, "REDIS_POOL_SIZE")

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = splitList(v)
	}
	setString(&cfg.Kafka.LedgerTopic, "KAFKA_LEDGER_TOPIC")
	setBool(&cfg.Kafka.CreateTopic, "KAFKA_CREATE_TOPIC")

	setString(&cfg.Auth.JWTSigningKey, "JWT_SIGNING_KEY")
	setString(&cfg.Auth.JWTIssuer, "JWT_ISSUER")
	setString(&cfg.Auth.JWTAudience, "JWT_AUDIENCE")

	setInt(&cfg.Signing.CompletionThreshold, "SIGNING_COMPLETION_THRESHOLD")

	setInt(&cfg.Sharing.PublicRequestsPerWindow, "PUBLIC_RATE_LIMIT")
	setDuration(&cfg.Sharing.PublicWindow, "PUBLIC_RATE_WINDOW")

	setInt(&cfg.Ledger.BufferSize, "LEDGER_BUFFER_SIZE")
	setInt(&cfg.Ledger.BreakerThreshold, "LEDGER_BREAKER_THRESHOLD")
	setDuration(&cfg.Ledger.BreakerCooldown, "LEDGER_BREAKER_COOLDOWN")

	setString(&cfg.Collaborators.NotifierWebhookURL, "NOTIFIER_WEBHOOK_URL")
	setString(&cfg.Collaborators.RendererURL, "RENDERER_URL")
	setString(&cfg.Collaborators.DirectoryURL, "DIRECTORY_URL")
	setDuration(&cfg.Collaborators.HTTPTimeout, "COLLABORATOR_HTTP_TIMEOUT")
	setInt(&cfg.Collaborators.DirectoryCacheSize, "DIRECTORY_CACHE_SIZE")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func lookupInt(key string) (int, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return n, true
}

func setInt(dst *int, key string) {
	if n, ok := lookupInt(key); ok {
		*dst = n
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
