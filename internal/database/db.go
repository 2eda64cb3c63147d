package database

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"vastra-system/internal/database/models"
)

func NewConnection(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("database DSN is required")
	}

	// TranslateError maps driver unique-violation errors to
	// gorm.ErrDuplicatedKey; the invoice and reservation-code retry paths
	// depend on it.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Store{},
		&models.StoreCategory{},
		&models.StoreSubCategory{},
		&models.OfferCategory{},
		&models.Advertisement{},
		&models.Product{},
		&models.ProductImage{},
		&models.ProductSize{},
		&models.Reservation{},
		&models.Sale{},
		&models.SaleItem{},
		&models.CustomerCredit{},
		&models.Return{},
		&models.BuyNowOrder{},
		&models.Staff{},
		&models.Attendance{},
		&models.SalaryRecord{},
	)
}
