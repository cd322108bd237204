package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store kinds
const (
	StoreFirestore = "firestore"
	StorePostgres  = "postgres"
	StoreRedis     = "redis"
	StoreMemory    = "memory"
)

type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Firestore FirestoreConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Search    SearchConfig
	Geohash   GeohashConfig
	Log       LogConfig
	Worker    WorkerConfig
	Metrics   MetricsConfig
	Tracing   TracingConfig
	Import    ImportConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  string
}

type StoreConfig struct {
	Kind string
}

type FirestoreConfig struct {
	ProjectID       string
	CredentialsFile string
	Collection      string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	Enabled       bool
	RangeCacheTTL time.Duration
}

type SearchConfig struct {
	MinGeneralCategories int
	QueryTimeout         time.Duration
	NearbyLimit          int
}

type GeohashConfig struct {
	Precision uint
}

type LogConfig struct {
	Level  string
	Format string
}

type WorkerConfig struct {
	Enabled           bool
	ConsumerGroup     string
	StreamReadTimeout time.Duration
	MaxRetries        int
	RetryBackoff      time.Duration
}

type MetricsConfig struct {
	Enabled   bool
	Namespace string
}

type TracingConfig struct {
	Enabled     bool
	ServiceName string
	SampleRatio float64
}

type ImportConfig struct {
	File      string
	BatchSize int
}

// Load читает .env из текущей директории и переменные окружения
func Load() (*Config, error) {
	return LoadFrom(".env")
}

// LoadFrom reads the given dotenv file (a missing file is not an error) and
// overlays environment variables on top of it.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:         v.GetString("API_HOST"),
			Port:         v.GetInt("API_PORT"),
			Env:          v.GetString("API_ENV"),
			ReadTimeout:  time.Duration(v.GetInt("API_READ_TIMEOUT")) * time.Second,
			WriteTimeout: time.Duration(v.GetInt("API_WRITE_TIMEOUT")) * time.Second,
			CORSOrigins:  v.GetString("API_CORS_ORIGINS"),
		},
		Store: StoreConfig{
			Kind: strings.ToLower(strings.TrimSpace(v.GetString("STORE_KIND"))),
		},
		Firestore: FirestoreConfig{
			ProjectID:       v.GetString("FIRESTORE_PROJECT_ID"),
			CredentialsFile: v.GetString("FIRESTORE_CREDENTIALS_FILE"),
			Collection:      v.GetString("FIRESTORE_COLLECTION"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxConns:        v.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(v.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			Enabled:       v.GetBool("CACHE_ENABLED"),
			RangeCacheTTL: time.Duration(v.GetInt("RANGE_CACHE_TTL")) * time.Second,
		},
		Search: SearchConfig{
			MinGeneralCategories: v.GetInt("SEARCH_MIN_GENERAL_CATEGORIES"),
			QueryTimeout:         time.Duration(v.GetInt("SEARCH_QUERY_TIMEOUT")) * time.Millisecond,
			NearbyLimit:          v.GetInt("SEARCH_NEARBY_LIMIT"),
		},
		Geohash: GeohashConfig{
			Precision: clampPrecision(v.GetInt("GEOHASH_PRECISION")),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Worker: WorkerConfig{
			Enabled:           v.GetBool("WORKER_ENABLED"),
			ConsumerGroup:     v.GetString("WORKER_CONSUMER_GROUP"),
			StreamReadTimeout: time.Duration(v.GetInt("WORKER_STREAM_READ_TIMEOUT")) * time.Millisecond,
			MaxRetries:        v.GetInt("WORKER_MAX_RETRIES"),
			RetryBackoff:      time.Duration(v.GetInt("WORKER_RETRY_BACKOFF")) * time.Millisecond,
		},
		Metrics: MetricsConfig{
			Enabled:   v.GetBool("METRICS_ENABLED"),
			Namespace: v.GetString("METRICS_NAMESPACE"),
		},
		Tracing: TracingConfig{
			Enabled:     v.GetBool("TRACING_ENABLED"),
			ServiceName: v.GetString("TRACING_SERVICE_NAME"),
			SampleRatio: v.GetFloat64("TRACING_SAMPLE_RATIO"),
		},
		Import: ImportConfig{
			File:      v.GetString("IMPORT_FILE"),
			BatchSize: v.GetInt("IMPORT_BATCH_SIZE"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("API_HOST", "0.0.0.0")
	v.SetDefault("API_PORT", 8080)
	v.SetDefault("API_ENV", "development")
	v.SetDefault("API_READ_TIMEOUT", 10)
	v.SetDefault("API_WRITE_TIMEOUT", 10)
	v.SetDefault("API_CORS_ORIGINS", "*")

	v.SetDefault("STORE_KIND", StoreFirestore)
	v.SetDefault("FIRESTORE_COLLECTION", "pontosColeta")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 300)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", 60)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)

	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("RANGE_CACHE_TTL", 300)

	v.SetDefault("SEARCH_MIN_GENERAL_CATEGORIES", 3)
	v.SetDefault("SEARCH_QUERY_TIMEOUT", 3000)
	v.SetDefault("SEARCH_NEARBY_LIMIT", 10)

	v.SetDefault("GEOHASH_PRECISION", 10)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("WORKER_ENABLED", true)
	v.SetDefault("WORKER_CONSUMER_GROUP", "ecopoint-search-workers")
	v.SetDefault("WORKER_STREAM_READ_TIMEOUT", 5000)
	v.SetDefault("WORKER_MAX_RETRIES", 3)
	v.SetDefault("WORKER_RETRY_BACKOFF", 200)

	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("METRICS_NAMESPACE", "ecopoint")

	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("TRACING_SERVICE_NAME", "ecopoint-service")
	v.SetDefault("TRACING_SAMPLE_RATIO", 1.0)

	v.SetDefault("IMPORT_FILE", "pontosColeta.json")
	v.SetDefault("IMPORT_BATCH_SIZE", 200)
}

func (c *Config) validate() error {
	switch c.Store.Kind {
	case StoreFirestore, StorePostgres, StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_KIND %q", c.Store.Kind)
	}
	if c.Search.MinGeneralCategories < 0 {
		return fmt.Errorf("SEARCH_MIN_GENERAL_CATEGORIES must be >= 0, got %d", c.Search.MinGeneralCategories)
	}
	if c.Search.QueryTimeout <= 0 {
		return fmt.Errorf("SEARCH_QUERY_TIMEOUT must be positive")
	}
	return nil
}

func clampPrecision(p int) uint {
	if p < 1 {
		return 1
	}
	if p > 12 {
		return 12
	}
	return uint(p)
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return c.Database.DSN()
}

func (c *Config) GetRedisAddr() string {
	return c.Redis.Addr()
}

// DSN - строка подключения для драйвера pgx
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
