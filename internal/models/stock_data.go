package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockData is one OHLCV observation for a market at a timestamp.
// The (market, timestamp) pair is unique; a stored row is authoritative and
// is never overwritten by a later fetch.
type StockData struct {
	gorm.Model
	MarketID   uint            `gorm:"uniqueIndex:idx_market_timestamp;not null"`
	Market     Market          `gorm:"constraint:OnDelete:CASCADE"`
	Timestamp  time.Time       `gorm:"uniqueIndex:idx_market_timestamp;not null"`
	OpenPrice  decimal.Decimal `gorm:"type:numeric(15,4)"`
	HighPrice  decimal.Decimal `gorm:"type:numeric(15,4)"`
	LowPrice   decimal.Decimal `gorm:"type:numeric(15,4)"`
	ClosePrice decimal.Decimal `gorm:"type:numeric(15,4)"`
	Volume     int64
	MarketCap  *int64
}
