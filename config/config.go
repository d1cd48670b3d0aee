package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	LogLevel string
	DBUrl    string

	DBMaxConns int32

	// RecentSearchLimit bounds the search-history read side
	RecentSearchLimit int
}

func Load() *Config {
	// In docker/prod envs .env may not exist, system env vars are enough
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env vars")
	}

	cfg := &Config{
		Env:               getEnv("ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		DBUrl:             getEnv("DB_DSN", ""),
		DBMaxConns:        getInt32Env("DB_MAX_CONNS", 4),
		RecentSearchLimit: getIntEnv("RECENT_SEARCH_LIMIT", 5),
	}

	cfg.validate()
	return cfg
}

func (c *Config) validate() {
	if c.DBUrl == "" {
		log.Fatal("CRITICAL: DB_DSN environment variable is required")
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("Invalid int for %s, using fallback", key)
	}
	return fallback
}

func getInt32Env(key string, fallback int32) int32 {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(i)
		}
		log.Printf("Invalid int32 for %s, using fallback", key)
	}
	return fallback
}
