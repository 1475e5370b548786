package database

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lipsense/portal/app/models"
	"github.com/lipsense/portal/internal/pkg/env"
)

const maxRetries = 5
const retryDelay = 5 * time.Second

var DB *gorm.DB

// GetDB returns the shared connection, or nil when the database is not configured.
func GetDB() *gorm.DB {
	return DB
}

// DSN builds the MySQL data source name from the DB_* variables.
func DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		env.GetEnv("DB_USER", ""),
		env.GetEnv("DB_PASSWORD", ""),
		env.GetEnv("DB_HOST", "127.0.0.1"),
		env.GetEnv("DB_PORT", "3306"),
		env.GetEnv("DB_NAME", ""),
	)
}

// SetupDatabase connects with retries. Schema changes come from cmd/migrate;
// DB_AUTOMIGRATE=true additionally runs gorm's AutoMigrate for local work.
func SetupDatabase() error {
	if env.GetEnv("DB_NAME", "") == "" {
		return fmt.Errorf("DB_NAME is not set")
	}

	gormLogger := logger.Default.LogMode(logger.Warn)
	if env.IsDev() {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	var err error
	for i := 0; i < maxRetries; i++ {
		DB, err = gorm.Open(mysql.New(mysql.Config{
			DSN:                       DSN(),
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		}), &gorm.Config{Logger: gormLogger})
		if err == nil {
			break
		}

		log.Warnf("[Database] failed to connect (try %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	if err != nil {
		DB = nil
		return fmt.Errorf("connect database: %w", err)
	}

	if env.GetEnv("DB_AUTOMIGRATE", "false") == "true" {
		if err := DB.AutoMigrate(&models.Page{}, &models.Post{}, &models.ContactRequest{}); err != nil {
			return fmt.Errorf("automigrate: %w", err)
		}
	}
	log.Infof("[Database] connected to %s", env.GetEnv("DB_NAME", ""))
	return nil
}
