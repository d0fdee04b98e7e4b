package marketdata

import (
	"strings"

	"stockchart-engine/internal/models"
)

// Exchange suffixes Yahoo Finance expects for non-US listings.
var yahooSuffixes = map[string]string{
	models.MarketKRStock: ".KS",
	models.MarketJPStock: ".T",
	models.MarketUKStock: ".L",
	models.MarketCAStock: ".TO",
	models.MarketFRStock: ".PA",
	models.MarketDEStock: ".DE",
	models.MarketTWStock: ".TW",
	models.MarketINStock: ".NS",
}

// YahooSymbol appends the exchange suffix Yahoo Finance expects for the
// market's home exchange. US stocks and crypto pass through unchanged.
func YahooSymbol(symbol, marketType string) string {
	return symbol + yahooSuffixes[marketType]
}

// CoinGeckoID normalizes a crypto ticker into a CoinGecko lookup id:
// quote-currency suffixes are stripped and the remainder lower-cased,
// so "BTCUSDT" and "BTCUSD" both become "btc".
func CoinGeckoID(symbol string) string {
	s := strings.ToUpper(symbol)
	s = strings.TrimSuffix(s, "USDT")
	s = strings.TrimSuffix(s, "USD")
	return strings.ToLower(s)
}
