package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPPort string
	LogLevel string
	LogJSON  bool

	DBDriver      string
	SQLitePath    string
	PostgresDSN   string
	ConsumerStore string
	MongoURI      string
	MongoDB       string

	RedisAddr string
	CacheTTL  int // segundos

	UseKafka      bool
	KafkaBrokers  []string
	KafkaGroupID  string
	OutboxPeriod  time.Duration
	OutboxLimit   int

	ClickHouseAddr string
	ClickHouseDB   string

	UploadDir string
	PageSize  int

	JWTSecret     string
	JWTIssuer     string
	TokenTTL      time.Duration
	AdminEmail    string
	AdminPassword string
	SeedOnStart   bool
}

// UsesMongo indica si los consumers viven en MongoDB.
func (c *Config) UsesMongo() bool {
	return strings.EqualFold(c.ConsumerStore, "mongo")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_JSON", true)
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("SQLITE_PATH", "./rosterlab.db")
	v.SetDefault("POSTGRES_DSN", "")
	v.SetDefault("CONSUMER_STORE", "sql")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB", "rosterlab")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("CACHE_TTL", 120)
	v.SetDefault("USE_KAFKA", false)
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_ID", "rosterlab-analytics")
	v.SetDefault("OUTBOX_PERIOD", "1s")
	v.SetDefault("OUTBOX_LIMIT", 10)
	v.SetDefault("CLICKHOUSE_ADDR", "")
	v.SetDefault("CLICKHOUSE_DB", "default")
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("PAGE_SIZE", 3)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "rosterlab")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("ADMIN_EMAIL", "admin@gmail.com")
	v.SetDefault("ADMIN_PASSWORD", "Test!123")
	v.SetDefault("SEED_ON_START", true)
}

// LoadConfig carga .env si existe y después lee el entorno.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // .env es opcional

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		HTTPPort:       v.GetString("HTTP_PORT"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogJSON:        v.GetBool("LOG_JSON"),
		DBDriver:       v.GetString("DB_DRIVER"),
		SQLitePath:     v.GetString("SQLITE_PATH"),
		PostgresDSN:    v.GetString("POSTGRES_DSN"),
		ConsumerStore:  v.GetString("CONSUMER_STORE"),
		MongoURI:       v.GetString("MONGO_URI"),
		MongoDB:        v.GetString("MONGO_DB"),
		RedisAddr:      v.GetString("REDIS_ADDR"),
		CacheTTL:       v.GetInt("CACHE_TTL"),
		UseKafka:       v.GetBool("USE_KAFKA"),
		KafkaBrokers:   splitList(v.GetString("KAFKA_BROKERS")),
		KafkaGroupID:   v.GetString("KAFKA_GROUP_ID"),
		OutboxPeriod:   v.GetDuration("OUTBOX_PERIOD"),
		OutboxLimit:    v.GetInt("OUTBOX_LIMIT"),
		ClickHouseAddr: v.GetString("CLICKHOUSE_ADDR"),
		ClickHouseDB:   v.GetString("CLICKHOUSE_DB"),
		UploadDir:      v.GetString("UPLOAD_DIR"),
		PageSize:       v.GetInt("PAGE_SIZE"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		JWTIssuer:      v.GetString("JWT_ISSUER"),
		TokenTTL:       v.GetDuration("TOKEN_TTL"),
		AdminEmail:     v.GetString("ADMIN_EMAIL"),
		AdminPassword:  v.GetString("ADMIN_PASSWORD"),
		SeedOnStart:    v.GetBool("SEED_ON_START"),
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.PageSize < 1 {
		errs = append(errs, fmt.Errorf("PAGE_SIZE must be positive, got %d", c.PageSize))
	}
	if c.CacheTTL < 1 {
		errs = append(errs, fmt.Errorf("CACHE_TTL must be positive, got %d", c.CacheTTL))
	}
	if c.OutboxPeriod <= 0 {
		errs = append(errs, errors.New("OUTBOX_PERIOD must be a positive duration"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be a positive duration"))
	}
	switch strings.ToLower(c.DBDriver) {
	case "postgres", "postgresql", "pgx":
		if c.PostgresDSN == "" {
			errs = append(errs, errors.New("POSTGRES_DSN is required when DB_DRIVER=postgres"))
		}
	}
	switch strings.ToLower(c.ConsumerStore) {
	case "sql", "mongo":
	default:
		errs = append(errs, fmt.Errorf("CONSUMER_STORE must be sql or mongo, got %q", c.ConsumerStore))
	}
	return errors.Join(errs...)
}

// DSN devuelve la cadena de conexión del driver SQL elegido.
func (c *Config) DSN() string {
	switch strings.ToLower(c.DBDriver) {
	case "postgres", "postgresql", "pgx":
		return c.PostgresDSN
	}
	return c.SQLitePath
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
