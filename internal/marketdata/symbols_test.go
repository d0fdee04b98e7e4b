package marketdata

import (
	"testing"

	"stockchart-engine/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestYahooSymbol(t *testing.T) {
	tests := []struct {
		symbol     string
		marketType string
		want       string
	}{
		{"AAPL", models.MarketUSStock, "AAPL"},
		{"BTCUSD", models.MarketCrypto, "BTCUSD"},
		{"005930", models.MarketKRStock, "005930.KS"},
		{"7203", models.MarketJPStock, "7203.T"},
		{"VOD", models.MarketUKStock, "VOD.L"},
		{"SHOP", models.MarketCAStock, "SHOP.TO"},
		{"AIR", models.MarketFRStock, "AIR.PA"},
		{"SAP", models.MarketDEStock, "SAP.DE"},
		{"2330", models.MarketTWStock, "2330.TW"},
		{"RELIANCE", models.MarketINStock, "RELIANCE.NS"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, YahooSymbol(tt.symbol, tt.marketType))
	}
}

func TestCoinGeckoID(t *testing.T) {
	assert.Equal(t, "btc", CoinGeckoID("BTCUSDT"))
	assert.Equal(t, "btc", CoinGeckoID("BTCUSD"))
	assert.Equal(t, "eth", CoinGeckoID("ethusd"))
	assert.Equal(t, "bitcoin", CoinGeckoID("bitcoin"))
}
