package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Port            string
	DatabaseURL     string
	JWTSecret       string
	SessionTTL      string
	GoogleAudience  string
	AllowOrigins    []string
	LogLevel        string
	LogFormat       string
	LogstashTCPAddr string
	CronSecret      string
	AutoMigrate     bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	MapCacheTTL   time.Duration

	AMQPURL      string
	AMQPExchange string

	MinIOEndpoint       string
	MinIOAccessKey      string
	MinIOSecretKey      string
	MinIOUseSSL         bool
	MinIOBucketVendors  string
	MinIOPublicURL      string
	VendorImageMaxBytes int64

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Debug(".env file not loaded")
	}

	imageMax := int64(5 * 1024 * 1024)
	if v, err := strconv.ParseInt(getenv("VENDOR_IMAGE_MAX_BYTES", "5242880"), 10, 64); err == nil && v > 0 {
		imageMax = v
	}

	redisDB := 0
	if v, err := strconv.Atoi(getenv("REDIS_DB", "0")); err == nil && v >= 0 {
		redisDB = v
	}

	cacheTTL := 30 * time.Second
	if v, err := time.ParseDuration(getenv("MAP_CACHE_TTL", "30s")); err == nil && v > 0 {
		cacheTTL = v
	}

	return Config{
		Port:            getenv("PORT", "8080"),
		DatabaseURL:     must("DATABASE_URL"),
		JWTSecret:       must("JWT_SECRET"),
		SessionTTL:      getenv("SESSION_TTL", "24h"),
		GoogleAudience:  getenv("GOOGLE_AUDIENCE", ""),
		AllowOrigins:    splitAndTrim(getenv("ALLOW_ORIGINS", "*")),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogFormat:       getenv("LOG_FORMAT", "json"),
		LogstashTCPAddr: getenv("LOGSTASH_TCP_ADDR", ""),
		CronSecret:      getenv("CRON_SECRET", ""),
		AutoMigrate:     getenv("AUTO_MIGRATE", "true") == "true",

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,
		MapCacheTTL:   cacheTTL,

		AMQPURL:      getenv("AMQP_URL", ""),
		AMQPExchange: getenv("AMQP_EXCHANGE", "aqui.live_sessions"),

		MinIOEndpoint:       getenv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:      getenv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:      getenv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:         getenv("MINIO_USE_SSL", "false") == "true",
		MinIOBucketVendors:  getenv("MINIO_BUCKET_VENDORS", "aqui-vendors"),
		MinIOPublicURL:      getenv("MINIO_PUBLIC_URL", ""),
		VendorImageMaxBytes: imageMax,

		SMTPHost:     getenv("SMTP_HOST", ""),
		SMTPPort:     getenv("SMTP_PORT", ""),
		SMTPUsername: getenv("SMTP_USERNAME", ""),
		SMTPPassword: getenv("SMTP_PASSWORD", ""),
		SMTPFrom:     getenv("SMTP_FROM", ""),
	}
}

// SessionDuration parses SessionTTL, falling back to a day.
func (c Config) SessionDuration() time.Duration {
	if d, err := time.ParseDuration(c.SessionTTL); err == nil && d > 0 {
		return d
	}
	return 24 * time.Hour
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
