package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	AMQPURL            string
	MatchCreatedQueue  string
	MatchFinishedQueue string
	AuditQueue         string

	// Публикация события о завершении матча
	PublishMaxAttempts int
	PublishBackoff     time.Duration
	PublishTimeout     time.Duration

	// Очередь аудита
	AuditQueueSize       int
	AuditDispatchTimeout time.Duration

	AllowedOrigins []string

	// Архив чатов (Cloudflare R2). Опционально: при пустых значениях
	// архивация отключается.
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	amqpURL := os.Getenv("AMQP_URL")
	if amqpURL == "" {
		return nil, fmt.Errorf("AMQP_URL environment variable is not set")
	}

	port, err := intFromEnv("SERVER_PORT", 8002)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	publishAttempts, err := intFromEnv("PUBLISH_MAX_ATTEMPTS", 3)
	if err != nil {
		return nil, err
	}
	publishBackoff, err := durationFromEnv("PUBLISH_BACKOFF", 500*time.Millisecond)
	if err != nil {
		return nil, err
	}
	publishTimeout, err := durationFromEnv("PUBLISH_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	auditQueueSize, err := intFromEnv("AUDIT_QUEUE_SIZE", 1024)
	if err != nil {
		return nil, err
	}
	auditDispatchTimeout, err := durationFromEnv("AUDIT_DISPATCH_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	origins := strings.Split(getEnvOrDefault("ALLOWED_ORIGINS", "http://127.0.0.1:5500,http://localhost:5500"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	cfg := &Config{
		DatabaseURL:          dbURL,
		JWTSecretKey:         jwtKey,
		ServerPort:           port,
		AMQPURL:              amqpURL,
		MatchCreatedQueue:    getEnvOrDefault("MATCH_CREATED_QUEUE", "matches.created"),
		MatchFinishedQueue:   getEnvOrDefault("MATCH_FINISHED_QUEUE", "matches.finished"),
		AuditQueue:           getEnvOrDefault("AUDIT_QUEUE", "audit.logs"),
		PublishMaxAttempts:   publishAttempts,
		PublishBackoff:       publishBackoff,
		PublishTimeout:       publishTimeout,
		AuditQueueSize:       auditQueueSize,
		AuditDispatchTimeout: auditDispatchTimeout,
		AllowedOrigins:       origins,
		R2AccountID:          os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:        os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:    os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:         os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:      os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	return cfg, nil
}

// ArchiverEnabled сообщает, задана ли конфигурация архива чатов.
func (c *Config) ArchiverEnabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" && c.R2BucketName != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func intFromEnv(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return value, nil
}

func durationFromEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return value, nil
}
