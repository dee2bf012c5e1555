package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Backend    BackendConfig
	Cloudinary CloudinaryConfig
	Firebase   FirebaseConfig
	Facebook   FacebookConfig
	RateLimit  RateLimitConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// JWTConfig verifies access tokens issued by the auth backend. Subject is the user uuid.
type JWTConfig struct {
	Secret       string
	Issuer       string
	Audience     string
	AccessExpiry time.Duration
}

// BackendConfig bounds every store round trip.
type BackendConfig struct {
	Timeout time.Duration
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

type FirebaseConfig struct {
	ServiceAccountPath string
}

type FacebookConfig struct {
	GraphBaseURL string
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// Load reads configuration from the environment. JWT_SECRET is required.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8099"),
			Env:          getEnv("APP_ENV", "development"),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			DSN:             getEnv("DATABASE_DSN", "realones:realones@tcp(localhost:3306)/realones?charset=utf8mb4&parseTime=True&loc=UTC"),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		JWT: JWTConfig{
			Secret:       getEnv("JWT_SECRET", ""),
			Issuer:       getEnv("JWT_ISSUER", "realones"),
			Audience:     getEnv("JWT_AUDIENCE", "authenticated"),
			AccessExpiry: getEnvDuration("JWT_ACCESS_EXPIRY", time.Hour),
		},
		Backend: BackendConfig{
			Timeout: getEnvDuration("BACKEND_TIMEOUT", 15*time.Second),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
			APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
			Folder:    getEnv("CLOUDINARY_FOLDER", "realones"),
		},
		Firebase: FirebaseConfig{
			ServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		},
		Facebook: FacebookConfig{
			GraphBaseURL: getEnv("FACEBOOK_GRAPH_URL", "https://graph.facebook.com/v19.0"),
		},
		RateLimit: RateLimitConfig{
			Requests: getEnvInt("RATE_LIMIT_REQUESTS", 100),
			Window:   getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
	}
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}

// HasCloudinary returns true if avatar uploads can be stored.
func (c *Config) HasCloudinary() bool {
	return c.Cloudinary.CloudName != "" && c.Cloudinary.APIKey != "" && c.Cloudinary.APISecret != ""
}

func (c *Config) IsProduction() bool { return c.Server.Env == "production" }

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
