package config

import (
	"log"
	"os"
	"strconv"

	"github.com/Rishiraj17/backend-foundation/pkg/constant"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Env                      string
	Port                     string
	MetricsPort              string
	DBURL                    string
	MigrationsDir            string
	AccessTokenSecret        string
	AccessExpiryMin          int
	RefreshExpiryMin         int
	LoginFailureThreshold    int
	LockoutMin               int
	MaxActiveSessionsPerUser int
	BcryptCost               int
}

func Load() *Config {
	return &Config{
		Env:                      getEnv("ENV", "development"),
		Port:                     getEnv("PORT", "8080"),
		MetricsPort:              getEnv("METRICS_PORT", "9090"),
		DBURL:                    mustGetEnv("DB_URL"),
		MigrationsDir:            getEnv("MIGRATIONS_DIR", "migrations"),
		AccessTokenSecret:        mustGetEnv("ACCESS_TOKEN_SECRET"),
		AccessExpiryMin:          getEnvAsInt("ACCESS_TOKEN_EXPIRY", constant.AccessTokenExpiryMinutes),
		RefreshExpiryMin:         getEnvAsInt("REFRESH_TOKEN_EXPIRY", constant.RefreshTokenExpiryMinutes),
		LoginFailureThreshold:    getEnvAsInt("LOGIN_FAILURE_THRESHOLD", constant.LoginFailureThreshold),
		LockoutMin:               getEnvAsInt("LOCKOUT_DURATION", constant.LockoutMinutes),
		MaxActiveSessionsPerUser: getEnvAsInt("MAX_ACTIVE_SESSIONS", constant.MaxActiveSessionsPerUser),
		BcryptCost:               getEnvAsInt("BCRYPT_COST", bcrypt.DefaultCost),
	}
}

func getEnv(key string, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func mustGetEnv(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	log.Fatalf("Missing required environment variable: %s", key)
	return ""
}

func getEnvAsInt(key string, defaultVal int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Printf("Invalid value for %s, using default %d", key, defaultVal)
		return defaultVal
	}
	return val
}
