package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	HorizonURL        string
	NetworkPassphrase string
	SenderSecret      string
	FriendbotURL      string
}

// Load reads .env when present, then the environment. Credentials are not
// validated here; missing settlement credentials surface when the gateway
// is constructed.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, relying on system env variables")
	}

	return &Config{
		ServerPort: getEnv("PORT", "8080"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "payflow"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		HorizonURL:        getEnv("HORIZON_URL", "https://horizon-testnet.stellar.org"),
		NetworkPassphrase: getEnv("NETWORK_PASSPHRASE", "Test SDF Network ; September 2015"),
		SenderSecret:      getEnv("STELLAR_SENDER_SECRET", ""),
		FriendbotURL:      getEnv("FRIENDBOT_URL", "https://friendbot.stellar.org/"),
	}
}

// GetDBConnectionString builds the lib/pq connection string.
func (c *Config) GetDBConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
