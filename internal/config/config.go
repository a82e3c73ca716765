package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server  ServerConfig
	MongoDB MongoDBConfig
	Auth    AuthConfig
	CORS    CORSConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// AuthConfig configures token verification against the identity provider.
// ProjectID overrides the project id read from the credentials file.
// RequireWrites attaches the bearer-token gate to every mutating route.
type AuthConfig struct {
	CredentialsFile string
	ProjectID       string
	RequireWrites   bool
}

type CORSConfig struct {
	Origins []string
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8000")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("MONGODB_DATABASE", "ipaps")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("CORS_ORIGINS", "*")
	viper.SetDefault("FIREBASE_CREDENTIALS", "firebase_credentials.json")

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:      getEnvOrPanic("MONGODB_URI"),
			Database: viper.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Auth: AuthConfig{
			CredentialsFile: viper.GetString("FIREBASE_CREDENTIALS"),
			ProjectID:       viper.GetString("FIREBASE_PROJECT_ID"),
			RequireWrites:   viper.GetBool("AUTH_REQUIRE_WRITES"),
		},
		CORS: CORSConfig{
			Origins: SplitOrigins(viper.GetString("CORS_ORIGINS")),
		},
	}

	return cfg, nil
}

// SplitOrigins parses the comma-separated CORS allow-list.
func SplitOrigins(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvOrPanic(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("environment variable %s is required", key)
	}
	return v
}
