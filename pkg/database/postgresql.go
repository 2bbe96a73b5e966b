package database

import (
	"errors"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewGormDB opens a GORM connection for the identity graph using the
// provided DSN.
func NewGormDB(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("database DSN is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}
