package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	LLM      LLMConfig
	Storage  StorageConfig
	Queue    QueueConfig
	Quiz     QuizConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
	CORSOrigins []string
}

type DatabaseConfig struct {
	// URL, when set, replaces the individual DB_* connection fields.
	URL        string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration
	SlowQueryThreshold    time.Duration
}

type JWTConfig struct {
	AccessSecret     string
	RefreshSecret    string
	AccessExpiresIn  time.Duration
	RefreshExpiresIn time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

type LLMConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Timeout     time.Duration
	Temperature float64
}

type StorageConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Region          string
	ResumeBucket    string
	SignedURLExpiry time.Duration
	MaxResumeBytes  int64
}

type QueueConfig struct {
	URL             string
	GenerationQueue string
	EventsExchange  string
	Prefetch        int
	// ConsumeInServer lets the API process drain the generation queue when no
	// separate worker is deployed.
	ConsumeInServer bool
}

type QuizConfig struct {
	DefaultQuestionsPerSkill int
	MaxQuestionsPerSkill     int
	GenerationTimeout        time.Duration
	PollInterval             time.Duration
	PollMaxAttempts          int
	StaleAfter               time.Duration
	SweepInterval            time.Duration
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{}

	var missing []string
	var invalid []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}
	optDefault := func(key, def string) string {
		if v := opt(key); v != "" {
			return v
		}
		return def
	}
	dur := func(key string, def time.Duration) time.Duration {
		raw := opt(key)
		if raw == "" {
			return def
		}
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			invalid = append(invalid, key)
			return def
		}
		return d
	}
	num := func(key string, def int) int {
		raw := opt(key)
		if raw == "" {
			return def
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			invalid = append(invalid, key)
			return def
		}
		return v
	}
	flag := func(key string, def bool) bool {
		raw := opt(key)
		if raw == "" {
			return def
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			invalid = append(invalid, key)
			return def
		}
		return v
	}

	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
		CORSOrigins: splitList(optDefault("CORS_ALLOW_ORIGINS", "*")),
	}

	cfg.Database = DatabaseConfig{
		URL:        opt("DATABASE_URL"),
		DBHost:     opt("DB_HOST"),
		DBPort:     opt("DB_PORT"),
		DBName:     opt("DB_NAME"),
		DBUser:     opt("DB_USER"),
		DBPassword: opt("DB_PASSWORD"),
		DBSSLMode:  optDefault("DB_SSL_MODE", "disable"),

		ConnectTimeout:        dur("DB_CONNECT_TIMEOUT", 5*time.Second),
		PoolMaxConns:          int32(num("DB_POOL_MAX_CONNS", 10)),
		PoolMinConns:          int32(num("DB_POOL_MIN_CONNS", 0)),
		PoolMaxConnLifetime:   dur("DB_POOL_MAX_CONN_LIFETIME", time.Hour),
		PoolMaxConnIdleTime:   dur("DB_POOL_MAX_CONN_IDLE_TIME", 30*time.Minute),
		PoolHealthCheckPeriod: dur("DB_POOL_HEALTH_CHECK_PERIOD", time.Minute),
		SlowQueryThreshold:    dur("DB_SLOW_QUERY_THRESHOLD", 500*time.Millisecond),
	}

	cfg.JWT = JWTConfig{
		AccessSecret:     req("JWT_ACCESS_SECRET"),
		RefreshSecret:    req("JWT_REFRESH_SECRET"),
		AccessExpiresIn:  dur("JWT_ACCESS_EXPIRES_IN", 15*time.Minute),
		RefreshExpiresIn: dur("JWT_REFRESH_EXPIRES_IN", 7*24*time.Hour),
	}

	cfg.Redis = RedisConfig{
		Host:     optDefault("REDIS_HOST", "localhost"),
		Port:     optDefault("REDIS_PORT", "6379"),
		Password: opt("REDIS_PASSWORD"),
		DB:       num("REDIS_DB", 0),
		TTL:      dur("REDIS_TTL", 600*time.Second),
	}

	cfg.LLM = LLMConfig{
		BaseURL:     optDefault("LLM_BASE_URL", "https://api.openai.com/v1"),
		APIKey:      opt("LLM_API_KEY"),
		Model:       optDefault("LLM_MODEL", "gpt-4o-mini"),
		Timeout:     dur("LLM_TIMEOUT", 45*time.Second),
		Temperature: 0.7,
	}

	cfg.Storage = StorageConfig{
		Endpoint:        opt("MINIO_ENDPOINT"),
		AccessKeyID:     opt("MINIO_ACCESS_KEY"),
		SecretAccessKey: opt("MINIO_SECRET_KEY"),
		UseSSL:          flag("MINIO_USE_SSL", false),
		Region:          opt("MINIO_REGION"),
		ResumeBucket:    optDefault("MINIO_RESUME_BUCKET", "resumes"),
		SignedURLExpiry: dur("RESUME_SIGNED_URL_EXPIRY", 60*time.Second),
		MaxResumeBytes:  int64(num("RESUME_MAX_BYTES", 10<<20)),
	}

	cfg.Queue = QueueConfig{
		URL:             opt("RABBITMQ_URL"),
		GenerationQueue: optDefault("RABBITMQ_GENERATION_QUEUE", "quiz.generation"),
		EventsExchange:  optDefault("RABBITMQ_EVENTS_EXCHANGE", "recruitment.events"),
		Prefetch:        num("RABBITMQ_PREFETCH", 4),
		ConsumeInServer: flag("RABBITMQ_CONSUME_IN_SERVER", true),
	}

	cfg.Quiz = QuizConfig{
		DefaultQuestionsPerSkill: num("QUIZ_QUESTIONS_PER_SKILL", 10),
		MaxQuestionsPerSkill:     num("QUIZ_MAX_QUESTIONS_PER_SKILL", 20),
		GenerationTimeout:        dur("QUIZ_GENERATION_TIMEOUT", 2*time.Minute),
		PollInterval:             dur("QUIZ_POLL_INTERVAL", 5*time.Second),
		PollMaxAttempts:          num("QUIZ_POLL_MAX_ATTEMPTS", 5),
		StaleAfter:               dur("QUIZ_STALE_AFTER", 10*time.Minute),
		SweepInterval:            dur("QUIZ_SWEEP_INTERVAL", time.Minute),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
