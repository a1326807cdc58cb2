package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config настройки Ledger Worker: журнал событий займов в PostgreSQL
type Config struct {
	Database DatabaseConfig
	Kafka    KafkaConfig
	HTTP     HTTPConfig
}

// DatabaseConfig - настройки подключения к PostgreSQL журнала
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string // disable/require/verify-full
}

// KafkaConfig - подписка на события lending-service
type KafkaConfig struct {
	Brokers  []string // host:port
	Topic    string
	GroupID  string
	MinBytes int // Минимум байт для fetch запроса
	MaxBytes int // Максимум байт для fetch запроса
}

type HTTPConfig struct {
	Addr string // Адрес для health, metrics и истории займов
}

// Load загружает конфигурацию из переменных окружения и .env
func Load() (*Config, error) {
	_ = godotenv.Load()

	minBytes, err := getEnvInt("KAFKA_MIN_BYTES", 1)
	if err != nil {
		return nil, err
	}
	maxBytes, err := getEnvInt("KAFKA_MAX_BYTES", 10e6)
	if err != nil {
		return nil, err
	}
	if minBytes <= 0 || maxBytes < minBytes {
		return nil, fmt.Errorf("invalid kafka fetch sizes: min=%d max=%d", minBytes, maxBytes)
	}

	return &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "lending_ledger"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Kafka: KafkaConfig{
			Brokers:  splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
			Topic:    getEnv("KAFKA_TOPIC", "lending_events"),
			GroupID:  getEnv("KAFKA_GROUP_ID", "ledger-worker-group"),
			MinBytes: minBytes,
			MaxBytes: maxBytes,
		},
		HTTP: HTTPConfig{
			Addr: getEnv("HTTP_ADDR", ":8086"),
		},
	}, nil
}

// DSN возвращает строку подключения к PostgreSQL в формате libpq
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
