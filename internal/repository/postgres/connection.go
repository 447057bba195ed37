package postgres

import (
	"fmt"
	"net/url"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"members-portal/internal/domain"
	"members-portal/internal/repository"
)

// NewUserConnection opens the credential store and migrates the users table.
// TranslateError is on so a unique-index violation surfaces as
// gorm.ErrDuplicatedKey instead of a driver-specific error.
func NewUserConnection(databaseURL, caCertPath string) (*gorm.DB, error) {
	dsn, err := withRootCert(databaseURL, caCertPath)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&domain.User{}); err != nil {
		return nil, err
	}

	return db, nil
}

// NewSessionConnection opens the session store and migrates the sessions
// table. The session store takes its own DSN so it can live on a different
// database than the credential store.
func NewSessionConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&domain.Session{}); err != nil {
		return nil, err
	}

	return db, nil
}

// withRootCert appends sslrootcert/sslmode parameters when a CA bundle is
// configured for the database connection.
func withRootCert(databaseURL, caCertPath string) (string, error) {
	if caCertPath == "" {
		return databaseURL, nil
	}
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("parse database url: %w", err)
	}
	q := u.Query()
	q.Set("sslrootcert", caCertPath)
	q.Set("sslmode", "verify-full")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func NewRepositories(userDB, sessionDB *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:    NewUserRepository(userDB),
		Session: NewSessionRepository(sessionDB),
	}
}
