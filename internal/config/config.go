package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	App      AppConfig
	Economy  EconomyConfig
	Windows  WindowConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port string
}

// AppConfig holds application-specific settings
type AppConfig struct {
	JWTSecret    string
	AdminPlayers []string
}

// EconomyConfig holds PULP economy settings. Enabled is read once at start;
// when false no economy routes or jobs are registered at all.
type EconomyConfig struct {
	Enabled            bool
	StartingBalance    int64
	MinWager           int64
	AdvantageEODExpiry bool
	ChallengeExpiry    time.Duration
}

// WindowConfig holds betting window cycle settings
type WindowConfig struct {
	AutoCycle     bool
	CycleInterval time.Duration
	OpenDuration  time.Duration
	LockDuration  time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "pulp_league"),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		App: AppConfig{
			JWTSecret:    getEnv("JWT_SECRET", ""),
			AdminPlayers: splitList(getEnv("ADMIN_PLAYERS", "")),
		},
		Economy: EconomyConfig{
			Enabled:            getEnvBool("PULP_ECONOMY_ENABLED", true),
			StartingBalance:    getEnvInt64("STARTING_BALANCE", 100),
			MinWager:           getEnvInt64("MIN_WAGER", 20),
			AdvantageEODExpiry: getEnvBool("ADVANTAGE_EOD_EXPIRY", false),
			ChallengeExpiry:    getEnvDuration("CHALLENGE_EXPIRY", 72*time.Hour),
		},
		Windows: WindowConfig{
			AutoCycle:     getEnvBool("WINDOW_AUTO_CYCLE", false),
			CycleInterval: getEnvDuration("WINDOW_CYCLE_INTERVAL", time.Minute),
			OpenDuration:  getEnvDuration("WINDOW_OPEN_DURATION", 48*time.Hour),
			LockDuration:  getEnvDuration("WINDOW_LOCK_DURATION", 24*time.Hour),
		},
	}

	// Validate required fields
	if config.App.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if config.Economy.MinWager <= 0 {
		return nil, fmt.Errorf("MIN_WAGER must be positive")
	}

	return config, nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
