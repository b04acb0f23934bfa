package config

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/carbuapp/oficina-api/logger"
)

const defaultSQLitePath = "oficina.db"

var DB *gorm.DB

// Dialector picks the gorm driver from the DSN: postgres URLs and key/value
// DSNs go to postgres, "sqlite://<path>" or an empty DSN go to sqlite.
func Dialector(databaseURL string) (gorm.Dialector, string) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return postgres.Open(databaseURL), "postgres"
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(databaseURL, "sqlite://")), "sqlite"
	case databaseURL == "":
		return sqlite.Open(defaultSQLitePath), "sqlite"
	default:
		return postgres.Open(databaseURL), "postgres"
	}
}

// ConnectDatabase opens the database described by cfg.DatabaseURL
func ConnectDatabase(cfg *Config) error {
	dialector, name := Dialector(cfg.DatabaseURL)
	if cfg.DatabaseURL == "" {
		logger.L().Warn("DATABASE_URL not set, using local sqlite", zap.String("path", defaultSQLitePath))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.NewGormLogger(logger.L()),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	if name == "sqlite" {
		// sqlite allows one writer; a single connection serializes transactions
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	SetDB(db)
	logger.L().Info("database connection established", zap.String("dialect", name))
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// SetDB replaces the database instance returned by GetDB.
func SetDB(db *gorm.DB) {
	DB = db
}
