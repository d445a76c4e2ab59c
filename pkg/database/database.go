package database

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/suteetoe/marketplace/internal/model"
	"github.com/suteetoe/marketplace/pkg/config"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the database connection described by the configuration
func InitDB(dbConfig *config.DBConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch dbConfig.Driver {
	case "postgres", "":
		// Configure Postgres options
		dialector = postgres.New(postgres.Config{
			DSN:                  dbConfig.GetDSN(),
			PreferSimpleProtocol: true, // Disables implicit prepared statement usage
		})
	case "sqlite":
		dialector = sqlite.Open(dbConfig.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", dbConfig.Driver)
	}

	// Open connection
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(dbConfig.LogLevel),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		zap.L().Error("Failed to connect to database", zap.String("driver", dbConfig.Driver), zap.Error(err))
		return nil, err
	}

	// Get generic database object SQL
	sqlDB, err := db.DB()
	if err != nil {
		zap.L().Error("Failed to get database object", zap.Error(err))
		return nil, err
	}

	// Set connection pool settings from config
	sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
	sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)

	zap.L().Info("Database connected successfully", zap.String("driver", dialector.Name()))

	return db, nil
}

// Migrate creates or updates the marketplace tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}, &model.Need{}, &model.Service{}); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	return nil
}
