package config

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Orders   OrdersConfig
	S3       S3Config
	Archive  ArchiveConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type LogConfig struct {
	Level  string
	Format string // console, json
}

type DatabaseConfig struct {
	Driver       string // postgres, mysql
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	TxIsolation  string
	QueryTimeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	PartsTTL time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type OrdersConfig struct {
	RateLimit float64 // requests per second per client
	RateBurst int
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	BaseURL         string // CloudFront or S3 direct URL
}

type ArchiveConfig struct {
	Cron string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	driver := strings.ToLower(getEnv("DB_DRIVER", "postgres"))
	defaultPort := "5432"
	if driver == "mysql" {
		defaultPort = "3306"
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "5000"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", ""),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Database: DatabaseConfig{
			Driver:       driver,
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", defaultPort),
			User:         getEnv("DB_USER", "root"),
			Password:     getEnv("DB_PASSWORD", ""),
			DBName:       getEnv("DB_NAME", "my_database"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: parseInt(getEnv("DB_MAX_OPEN_CONNS", "10"), 10),
			MaxIdleConns: parseInt(getEnv("DB_MAX_IDLE_CONNS", "10"), 10),
			TxIsolation:  getEnv("DB_TX_ISOLATION", "read_committed"),
			QueryTimeout: parseDuration(getEnv("DB_QUERY_TIMEOUT", "10s"), 10*time.Second),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
			PartsTTL: parseDuration(getEnv("PARTS_CACHE_TTL", "10m"), 10*time.Minute),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "*")),
		},
		Orders: OrdersConfig{
			RateLimit: parseFloat(getEnv("ORDER_RATE_LIMIT", "2"), 2),
			RateBurst: parseInt(getEnv("ORDER_RATE_BURST", "10"), 10),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "eu-central-1"),
			Bucket:          getEnv("AWS_S3_BUCKET", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			BaseURL:         getEnv("AWS_S3_BASE_URL", ""),
		},
		Archive: ArchiveConfig{
			Cron: getEnv("ARCHIVE_CRON", "0 3 * * *"),
		},
	}

	if config.Log.Level == "" {
		config.Log.Level = "info"
		if config.Server.Environment == "development" {
			config.Log.Level = "debug"
		}
	}

	if driver != "postgres" && driver != "mysql" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (expected postgres or mysql)", driver)
	}

	return config, nil
}

// DSN renders the connection string for the configured driver.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "mysql" {
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.User, c.Password, c.Host, c.Port, c.DBName,
		)
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Isolation maps DB_TX_ISOLATION onto database/sql levels.
// Unknown values fall back to the driver default.
func (c *DatabaseConfig) Isolation() sql.IsolationLevel {
	switch strings.ToLower(c.TxIsolation) {
	case "read_uncommitted":
		return sql.LevelReadUncommitted
	case "read_committed":
		return sql.LevelReadCommitted
	case "repeatable_read":
		return sql.LevelRepeatableRead
	case "serializable":
		return sql.LevelSerializable
	default:
		return sql.LevelDefault
	}
}

func (c *RedisConfig) Enabled() bool {
	return c.Host != ""
}

func (c *S3Config) Enabled() bool {
	return c.Bucket != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return n
}

func parseFloat(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Printf("Invalid number %s, using default %v", s, fallback)
		return fallback
	}
	return f
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
