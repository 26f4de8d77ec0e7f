package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cnc-telemetry-backend/config"
	"cnc-telemetry-backend/internal/model"
)

// Init initializes the database connection, configures the pool, and runs
// migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	gormDB, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	log.Println("Running database migrations...")
	if err := Migrate(gormDB); err != nil {
		return nil, err
	}

	log.Println("Database initialization complete.")
	return gormDB, nil
}

// Migrate creates the telemetry schema. Shared with the SQLite-backed tests.
func Migrate(gormDB *gorm.DB) error {
	if err := gormDB.AutoMigrate(
		&model.Machine{},
		&model.Axis{},
		&model.AxisData{},
		&model.ToolSample{},
		&model.ToolUsage{},
		&model.AccessToken{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}

	// AutoMigrate already indexes axis.machine_id and axis_data.axis_id via
	// struct tags; the axis_name check constraint is Postgres-only DDL.
	if gormDB.Dialector.Name() == "postgres" {
		ddls := []string{
			"ALTER TABLE axis DROP CONSTRAINT IF EXISTS axis_name_valid;",
			"ALTER TABLE axis ADD CONSTRAINT axis_name_valid CHECK (axis_name IN ('X','Y','Z','A','C'));",
		}
		for _, ddl := range ddls {
			if err := gormDB.Exec(ddl).Error; err != nil {
				log.Printf("Warning: DDL failed (%q): %v. Continuing without it.", ddl, err)
			}
		}
	}

	return nil
}
