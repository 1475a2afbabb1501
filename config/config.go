package config

import (
	"log"
	"os"
	"strconv"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"restaurant-ordering-api/models"
)

// Config holds everything the process needs at startup
type Config struct {
	Port                string
	DBPath              string
	JWTSecret           []byte
	OrderNumberAttempts int
}

// Load reads configuration from the environment. A missing JWT secret
// is a fatal misconfiguration: better to refuse to start than to fail
// every request.
func Load() Config {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET must be set")
	}
	return Config{
		Port:                getEnv("PORT", "8080"),
		DBPath:              getEnv("DB_PATH", "restaurant.db"),
		JWTSecret:           []byte(secret),
		OrderNumberAttempts: getEnvInt("ORDER_NUMBER_ATTEMPTS", 5),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// OpenDB connects to SQLite and migrates the schema
func OpenDB(path string) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderItemOption{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	return db
}
