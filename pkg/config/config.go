package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Workload WorkloadConfig
	DST      DSTConfig
	Cache    CacheConfig
	Export   ExportConfig
	Audit    AuditJobConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// WeightTable maps assignment kinds and sub-kinds to load points. The
// two-tier homework/test split is the fallback when no sub-kind is set.
type WeightTable struct {
	Homework      int
	Test          int
	HomeworkLight int
	HomeworkMed   int
	HomeworkHeavy int
	Quiz          int
	Control       int
	DST           int
	Exam          int
}

// Thresholds holds the three ascending cut points separating the four
// load-status bands.
type Thresholds struct {
	Light  int
	Medium int
	Heavy  int
}

// WorkloadConfig tunes the aggregation engine.
type WorkloadConfig struct {
	Weights WeightTable
	Daily   Thresholds
	Weekly  Thresholds
}

// DSTConfig governs supervised-exam scheduling rules. ExamWeekday is the
// canonical day on which DSTs are expected, Saturday by convention.
type DSTConfig struct {
	MaxPerWeek      int
	MinWeeksBetween int
	MaxConsecutive  int
	ExamWeekday     time.Weekday
	SuggestionWeeks int
}

// CacheConfig tunes caller-side caching of computed summaries.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// ExportConfig controls planning exports.
type ExportConfig struct {
	Enabled    bool
	StorageDir string
}

// AuditJobConfig tunes the background schedule-audit queue.
type AuditJobConfig struct {
	Enabled bool
	Workers int
	Retries int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Workload = WorkloadConfig{
		Weights: WeightTable{
			Homework:      v.GetInt("WEIGHT_HOMEWORK"),
			Test:          v.GetInt("WEIGHT_TEST"),
			HomeworkLight: v.GetInt("WEIGHT_HOMEWORK_LIGHT"),
			HomeworkMed:   v.GetInt("WEIGHT_HOMEWORK_MEDIUM"),
			HomeworkHeavy: v.GetInt("WEIGHT_HOMEWORK_HEAVY"),
			Quiz:          v.GetInt("WEIGHT_QUIZ"),
			Control:       v.GetInt("WEIGHT_CONTROL"),
			DST:           v.GetInt("WEIGHT_DST"),
			Exam:          v.GetInt("WEIGHT_EXAM"),
		},
		Daily: Thresholds{
			Light:  v.GetInt("DAILY_THRESHOLD_LIGHT"),
			Medium: v.GetInt("DAILY_THRESHOLD_MEDIUM"),
			Heavy:  v.GetInt("DAILY_THRESHOLD_HEAVY"),
		},
		Weekly: Thresholds{
			Light:  v.GetInt("WEEKLY_THRESHOLD_LIGHT"),
			Medium: v.GetInt("WEEKLY_THRESHOLD_MEDIUM"),
			Heavy:  v.GetInt("WEEKLY_THRESHOLD_HEAVY"),
		},
	}

	cfg.DST = DSTConfig{
		MaxPerWeek:      v.GetInt("DST_MAX_PER_WEEK"),
		MinWeeksBetween: v.GetInt("DST_MIN_WEEKS_BETWEEN"),
		MaxConsecutive:  v.GetInt("DST_MAX_CONSECUTIVE"),
		ExamWeekday:     time.Weekday(v.GetInt("DST_EXAM_WEEKDAY")),
		SuggestionWeeks: v.GetInt("DST_SUGGESTION_WEEKS"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_CACHE"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), 5*time.Minute),
	}

	cfg.Export = ExportConfig{
		Enabled:    v.GetBool("ENABLE_EXPORT"),
		StorageDir: v.GetString("EXPORT_STORAGE_DIR"),
	}

	cfg.Audit = AuditJobConfig{
		Enabled: v.GetBool("ENABLE_AUDIT_JOB"),
		Workers: v.GetInt("AUDIT_JOB_WORKERS"),
		Retries: v.GetInt("AUDIT_JOB_RETRIES"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "charge_scolaire")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "charge-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("WEIGHT_HOMEWORK", 1)
	v.SetDefault("WEIGHT_TEST", 3)
	v.SetDefault("WEIGHT_HOMEWORK_LIGHT", 1)
	v.SetDefault("WEIGHT_HOMEWORK_MEDIUM", 2)
	v.SetDefault("WEIGHT_HOMEWORK_HEAVY", 3)
	v.SetDefault("WEIGHT_QUIZ", 2)
	v.SetDefault("WEIGHT_CONTROL", 3)
	v.SetDefault("WEIGHT_DST", 5)
	v.SetDefault("WEIGHT_EXAM", 7)

	v.SetDefault("DAILY_THRESHOLD_LIGHT", 2)
	v.SetDefault("DAILY_THRESHOLD_MEDIUM", 4)
	v.SetDefault("DAILY_THRESHOLD_HEAVY", 6)
	v.SetDefault("WEEKLY_THRESHOLD_LIGHT", 8)
	v.SetDefault("WEEKLY_THRESHOLD_MEDIUM", 15)
	v.SetDefault("WEEKLY_THRESHOLD_HEAVY", 20)

	v.SetDefault("DST_MAX_PER_WEEK", 1)
	v.SetDefault("DST_MIN_WEEKS_BETWEEN", 2)
	v.SetDefault("DST_MAX_CONSECUTIVE", 2)
	v.SetDefault("DST_EXAM_WEEKDAY", int(time.Saturday))
	v.SetDefault("DST_SUGGESTION_WEEKS", 4)

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CACHE_TTL", "5m")

	v.SetDefault("ENABLE_EXPORT", false)
	v.SetDefault("EXPORT_STORAGE_DIR", "./exports")

	v.SetDefault("ENABLE_AUDIT_JOB", false)
	v.SetDefault("AUDIT_JOB_WORKERS", 1)
	v.SetDefault("AUDIT_JOB_RETRIES", 3)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
