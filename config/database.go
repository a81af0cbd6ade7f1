package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"structura-api/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// dialector picks PostgreSQL when DATABASE_URL is set, MySQL otherwise.
func dialector() gorm.Dialector {
	if url := strings.TrimSpace(os.Getenv("DATABASE_URL")); url != "" {
		return postgres.Open(url)
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		os.Getenv("DB_USERNAME"),
		os.Getenv("DB_PASSWORD"),
		envStr("DB_HOST", "127.0.0.1"),
		envStr("DB_PORT", "3306"),
		os.Getenv("DB_DATABASE"),
	)
	return mysql.Open(dsn)
}

func InitDB() {
	var err error

	// In production, suppress SQL logs unless explicitly re-enabled via DEBUG_SQL=true.
	logLevel := logger.Info
	if IsProduction() && !envBool("DEBUG_SQL", false) {
		logLevel = logger.Warn
	}

	config := &gorm.Config{
		Logger: logger.New(
			log.New(LogWriter, "\r\n", log.LstdFlags),
			logger.Config{LogLevel: logLevel},
		),
	}

	DB, err = gorm.Open(dialector(), config)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	log.Println("Database connected successfully")

	if envBool("DB_AUTO_MIGRATE", false) {
		if err := AutoMigrate(DB); err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("Database schema migrated")
	}
}

// AutoMigrate creates or updates every table the API owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}
