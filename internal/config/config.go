package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Kafka     KafkaConfig
	Bootstrap BootstrapConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr          string
	Password      string
	DB            int
	PoolSize      int
	MinIdleConns  int
	DialTimeoutMs int
	IOTimeoutMs   int
}

// DialTimeout bounds connection setup, including the startup ping.
func (c RedisConfig) DialTimeout() time.Duration {
	return time.Duration(c.DialTimeoutMs) * time.Millisecond
}

// IOTimeout bounds each read and write, and so each session cache lookup.
func (c RedisConfig) IOTimeout() time.Duration {
	return time.Duration(c.IOTimeoutMs) * time.Millisecond
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret               string
	Issuer                  string
	AccessTokenTTLMinutes   int
	EmployeeSessionTTLHours int
	CustomerSessionTTLHours int
	QRCodeTTLHours          int
	BcryptCost              int
}

// RateLimitConfig bounds requests per client IP on the credential endpoints.
type RateLimitConfig struct {
	Enabled   bool
	PerSecond float64
	Burst     int
}

// KafkaConfig enables the audit event stream. Empty brokers disable it.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// BootstrapConfig seeds the initial company and super administrator.
type BootstrapConfig struct {
	CompanyEnabled       bool
	CompanyName          string
	CompanyContactPerson string
	CompanyEmail         string
	CompanyPhone         string
	CompanyAddress       string
	CompanyActive        bool

	AdminEmail     string
	AdminPassword  string
	AdminUsername  string
	AdminFirstname string
	AdminLastname  string
	AdminPin       string
	AdminLanguage  string
	AdminBranchID  string
}

// Load reads configuration from environment variables, applying defaults where possible.
// envFiles are passed to godotenv; a missing file is not an error.
func Load(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	perSecond, err := strconv.ParseFloat(getEnv("RATE_LIMIT_PER_SECOND", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_SECOND: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "semina"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:          getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:      os.Getenv("REDIS_PASSWORD"),
			DB:            redisDB,
			PoolSize:      getEnvAsInt("REDIS_POOL_SIZE", 20),
			MinIdleConns:  getEnvAsInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeoutMs: getEnvAsInt("REDIS_DIAL_TIMEOUT_MS", 2000),
			IOTimeoutMs:   getEnvAsInt("REDIS_IO_TIMEOUT_MS", 500),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:               getEnv("AUTH_JWT_SECRET", "dev-secret"),
			Issuer:                  getEnv("AUTH_ISSUER", "semina"),
			AccessTokenTTLMinutes:   getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			EmployeeSessionTTLHours: getEnvAsInt("AUTH_EMPLOYEE_SESSION_TTL_HOURS", 7*24),
			CustomerSessionTTLHours: getEnvAsInt("AUTH_CUSTOMER_SESSION_TTL_HOURS", 24),
			QRCodeTTLHours:          getEnvAsInt("AUTH_QR_CODE_TTL_HOURS", 24),
			BcryptCost:              getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		RateLimit: RateLimitConfig{
			Enabled:   getEnvAsBool("RATE_LIMIT_ENABLED", true),
			PerSecond: perSecond,
			Burst:     getEnvAsInt("RATE_LIMIT_BURST", 10),
		},
		Kafka: KafkaConfig{
			Brokers:    getEnvAsList("KAFKA_BROKERS"),
			AuditTopic: getEnv("KAFKA_AUDIT_TOPIC", "semina.audit"),
		},
		Bootstrap: BootstrapConfig{
			CompanyEnabled:       getEnvAsBool("INITIAL_COMPANY_ENABLED", false),
			CompanyName:          getEnv("INITIAL_COMPANY_NAME", "Default Company"),
			CompanyContactPerson: getEnv("INITIAL_COMPANY_CONTACT_PERSON", "Administrator"),
			CompanyEmail:         getEnv("INITIAL_COMPANY_EMAIL", "admin@company.com"),
			CompanyPhone:         getEnv("INITIAL_COMPANY_PHONE", ""),
			CompanyAddress:       getEnv("INITIAL_COMPANY_ADDRESS", ""),
			CompanyActive:        getEnvAsBool("INITIAL_COMPANY_ACTIVE", true),
			AdminEmail:           os.Getenv("SUPER_ADMIN_EMAIL"),
			AdminPassword:        os.Getenv("SUPER_ADMIN_PASSWORD"),
			AdminUsername:        getEnv("SUPER_ADMIN_USERNAME", "superadmin"),
			AdminFirstname:       getEnv("SUPER_ADMIN_FIRSTNAME", "Super"),
			AdminLastname:        getEnv("SUPER_ADMIN_LASTNAME", "Admin"),
			AdminPin:             getEnv("SUPER_ADMIN_PIN", "0000"),
			AdminLanguage:        getEnv("SUPER_ADMIN_LANGUAGE", "en"),
			AdminBranchID:        os.Getenv("SUPER_ADMIN_BRANCH_ID"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// AccessTokenTTL is the lifetime of bearer credentials for both principal kinds.
func (a AuthConfig) AccessTokenTTL() time.Duration {
	return minutesOr(a.AccessTokenTTLMinutes, 60)
}

// EmployeeSessionTTL bounds employee sessions and refresh credentials.
func (a AuthConfig) EmployeeSessionTTL() time.Duration {
	return hoursOr(a.EmployeeSessionTTLHours, 7*24)
}

// CustomerSessionTTL bounds customer sessions and refresh credentials.
func (a AuthConfig) CustomerSessionTTL() time.Duration {
	return hoursOr(a.CustomerSessionTTLHours, 24)
}

// QRCodeTTL is how long a generated QR code stays redeemable.
func (a AuthConfig) QRCodeTTL() time.Duration {
	return hoursOr(a.QRCodeTTLHours, 24)
}

// Enabled reports whether the audit stream should be wired.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

func minutesOr(v, fallback int) time.Duration {
	if v <= 0 {
		v = fallback
	}
	return time.Duration(v) * time.Minute
}

func hoursOr(v, fallback int) time.Duration {
	if v <= 0 {
		v = fallback
	}
	return time.Duration(v) * time.Hour
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
