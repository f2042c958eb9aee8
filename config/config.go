package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Config holds all configuration for the application
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	Port       string
	Env        string

	RedisAddr     string
	RedisPassword string
	AdminEmail    string

	// Business toggles. The manager auto-approval exception is carried as
	// configuration pending product-owner confirmation.
	AutoApproveManagerOwnedSales bool
	AggregateCacheTTLSeconds     int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading .env file: %v", err)
	}

	config := &Config{
		DBHost:        os.Getenv("DB_HOST"),
		DBPort:        os.Getenv("DB_PORT"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        os.Getenv("DB_NAME"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		Port:          os.Getenv("PORT"),
		Env:           os.Getenv("ENV"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),

		AutoApproveManagerOwnedSales: os.Getenv("AUTO_APPROVE_MANAGER_SALES") != "false",
		AggregateCacheTTLSeconds:     300,
	}

	if ttl, err := strconv.Atoi(os.Getenv("AGGREGATE_CACHE_TTL_SECONDS")); err == nil && ttl > 0 {
		config.AggregateCacheTTLSeconds = ttl
	}

	return config, nil
}
