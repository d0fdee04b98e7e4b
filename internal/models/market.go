package models

import "gorm.io/gorm"

// Market categories. The category decides which providers can serve a market
// and how its symbol is translated for the free fallback provider.
const (
	MarketCrypto  = "crypto"
	MarketUSStock = "us_stock"
	MarketKRStock = "kr_stock"
	MarketJPStock = "jp_stock"
	MarketINStock = "in_stock"
	MarketUKStock = "uk_stock"
	MarketCAStock = "ca_stock"
	MarketFRStock = "fr_stock"
	MarketDEStock = "de_stock"
	MarketTWStock = "tw_stock"
)

// Market is a tradeable instrument users can chart and predict on.
// Markets are created by the seed process and deactivated, never deleted.
type Market struct {
	gorm.Model
	Symbol     string `gorm:"uniqueIndex;not null"`
	Name       string
	MarketType string `gorm:"not null"`
	APISymbol  string `gorm:"not null"` // symbol used in provider API calls
	IsActive   bool   `gorm:"default:true"`
}
