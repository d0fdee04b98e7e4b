package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stockchart-engine/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const coinGeckoBaseURL = "https://api.coingecko.com/api/v3"

// CoinGecko serves crypto spot prices only. It is free and unauthenticated.
type CoinGecko struct {
	client *resty.Client
	logger *zap.Logger
}

func NewCoinGecko(timeout time.Duration, logger *zap.Logger) *CoinGecko {
	return &CoinGecko{
		client: resty.New().SetBaseURL(coinGeckoBaseURL).SetTimeout(timeout),
		logger: logger,
	}
}

func (c *CoinGecko) Name() string { return "coingecko" }

func (c *CoinGecko) Configured() bool { return true }

func (c *CoinGecko) Supports(marketType string) bool {
	return marketType == models.MarketCrypto
}

func (c *CoinGecko) Quote(ctx context.Context, symbol, marketType string) (decimal.Decimal, error) {
	id := CoinGeckoID(symbol)

	var out map[string]map[string]json.Number
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"ids":           id,
			"vs_currencies": "usd",
		}).
		SetResult(&out).
		Get("/simple/price")
	if err != nil {
		return decimal.Zero, fmt.Errorf("coingecko request failed: %w", err)
	}
	if resp.IsError() {
		return decimal.Zero, fmt.Errorf("coingecko returned status %s", resp.Status())
	}

	raw, ok := out[id]["usd"]
	if !ok {
		return decimal.Zero, errNoData
	}
	price, err := decimal.NewFromString(raw.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("coingecko bad price %q: %w", raw.String(), err)
	}
	return price, nil
}
