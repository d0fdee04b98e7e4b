package database

import (
	"fmt"

	"stockchart-engine/internal/config"
	"stockchart-engine/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// New creates a new database connection, migrates the schema and seeds the
// configured markets.
func New(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db, cfg); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the schema and seeds markets from the config.
// Existing rows are kept: predictions and user statistics must survive
// restarts. Markets already present are left untouched, so deactivating a
// market by hand is not undone by the next start.
func Migrate(db *gorm.DB, cfg *config.Config) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Market{},
		&models.StockData{},
		&models.Prediction{},
		&models.AccuracyEvent{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	for _, m := range cfg.Markets {
		market := models.Market{
			Symbol:     m.Symbol,
			Name:       m.Name,
			MarketType: m.MarketType,
			APISymbol:  m.APISymbol,
			IsActive:   true,
		}
		if err := db.FirstOrCreate(&market, models.Market{Symbol: m.Symbol}).Error; err != nil {
			return fmt.Errorf("failed to seed market '%s': %w", m.Symbol, err)
		}
	}

	return nil
}
