package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	ExportPath    string
	ReferencePath string
	TidyCSVPath   string
	ChartDir      string

	TopN        int
	StartOffset string
	MinAgeDays  int

	LogLevel string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "podcast"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "podcast123"),
		PostgresDB:       getEnv("POSTGRES_DB", "podcast_analytics"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		ExportPath:    getEnv("EXPORT_PATH", "./data/episode_export.csv"),
		ReferencePath: getEnv("REFERENCE_PATH", "./data/point_in_time_days.csv"),
		TidyCSVPath:   getEnv("TIDY_CSV_PATH", "./output/tidy_downloads.csv"),
		ChartDir:      getEnv("CHART_DIR", "./output"),

		TopN:        getEnvInt("TOP_N", 10),
		StartOffset: getEnv("START_OFFSET", "1w"),
		MinAgeDays:  getEnvInt("MIN_AGE_DAYS", 180),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
