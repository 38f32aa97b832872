package database

import (
	"fmt"

	"removaltracker/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewConnection opens the Postgres pool. SQL logging is verbose only in development.
func NewConnection(dsn string, development bool) (*gorm.DB, error) {
	logLevel := logger.Silent
	if development {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the tables for every persisted model.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Permission{},
		&model.Role{},
		&model.Department{},
		&model.User{},
		&model.UserDepartment{},
		&model.RemovalReason{},
		&model.Removal{},
		&model.RemovalItem{},
		&model.Approval{},
		&model.ReturnRecord{},
		&model.ExtensionRequest{},
		&model.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate models: %w", err)
	}
	logrus.WithField("component", "database").Info("Database migrations completed")
	return nil
}
