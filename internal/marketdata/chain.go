package marketdata

import (
	"context"
	"time"

	"stockchart-engine/internal/config"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Chain tries providers in a fixed priority order until one returns usable
// data. Every provider failure is logged and swallowed; the caller only ever
// sees data or the absence of data.
type Chain struct {
	series  []SeriesProvider
	quotes  []QuoteProvider
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewChain builds the default ordering. Series: Alpha Vantage, Twelve Data
// and Finnhub (keyed) ahead of the free Yahoo fallback. Quotes: Finnhub, then
// Alpha Vantage, then CoinGecko or Yahoo depending on market category.
func NewChain(cfg *config.Providers, logger *zap.Logger) *Chain {
	seriesTimeout := time.Duration(cfg.SeriesTimeout) * time.Second
	quoteTimeout := time.Duration(cfg.QuoteTimeout) * time.Second

	alphaVantage := NewAlphaVantage(cfg.AlphaVantageKey, seriesTimeout, logger)
	twelveData := NewTwelveData(cfg.TwelveDataKey, seriesTimeout, logger)
	finnhub := NewFinnhub(cfg.FinnhubKey, quoteTimeout, logger)
	yahoo := NewYahoo(seriesTimeout, logger)
	coinGecko := NewCoinGecko(quoteTimeout, logger)

	delay := cfg.BaseDelay
	if delay <= 0 {
		delay = 1
	}

	return &Chain{
		series: []SeriesProvider{alphaVantage, twelveData, finnhub, yahoo},
		quotes: []QuoteProvider{finnhub, alphaVantage, coinGecko, yahoo},
		// burst 1: the first keyed call goes out immediately, every further
		// keyed call within the window blocks for the base delay.
		limiter: rate.NewLimiter(rate.Limit(1/delay), 1),
		logger:  logger,
	}
}

// Series walks the fallback chain for historical bars, newest first.
// Exhausting every provider is not an error; the caller gets nil and retries
// on its next scheduled pass.
func (c *Chain) Series(ctx context.Context, symbol, marketType, interval, period string) []Bar {
	for _, p := range c.series {
		if !p.Configured() {
			c.logger.Debug("provider not configured, skipping",
				zap.String("provider", p.Name()))
			continue
		}
		if !p.Supports(marketType) {
			continue
		}
		if p.Keyed() {
			if err := c.limiter.Wait(ctx); err != nil {
				c.logger.Warn("rate limiter wait interrupted", zap.Error(err))
				return nil
			}
		}

		bars, err := p.Series(ctx, symbol, marketType, interval, period)
		if err != nil {
			c.logger.Warn("provider series fetch failed",
				zap.String("provider", p.Name()),
				zap.String("symbol", symbol),
				zap.Error(err))
			continue
		}
		if len(bars) == 0 {
			continue
		}

		c.logger.Info("fetched series",
			zap.String("provider", p.Name()),
			zap.String("symbol", symbol),
			zap.Int("bars", len(bars)))
		return bars
	}

	c.logger.Warn("no provider returned series data",
		zap.String("symbol", symbol),
		zap.String("market_type", marketType))
	return nil
}

// Quote returns the current price for the symbol, or ok=false when every
// provider failed. Quote calls are single cheap requests, so they are not
// spaced out the way series calls are.
func (c *Chain) Quote(ctx context.Context, symbol, marketType string) (decimal.Decimal, bool) {
	for _, p := range c.quotes {
		if !p.Configured() || !p.Supports(marketType) {
			continue
		}

		price, err := p.Quote(ctx, symbol, marketType)
		if err != nil {
			c.logger.Warn("provider quote failed",
				zap.String("provider", p.Name()),
				zap.String("symbol", symbol),
				zap.Error(err))
			continue
		}
		if !price.IsPositive() {
			continue
		}

		c.logger.Info("fetched current price",
			zap.String("provider", p.Name()),
			zap.String("symbol", symbol),
			zap.String("price", price.String()))
		return price, true
	}

	c.logger.Warn("no current price available",
		zap.String("symbol", symbol),
		zap.String("market_type", marketType))
	return decimal.Zero, false
}
