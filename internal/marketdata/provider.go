package marketdata

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// maxSeriesPoints caps how much history a single fetch keeps.
const maxSeriesPoints = 30

// errNoData marks a provider response that was well-formed but carried no
// usable observations. The chain treats it like any other failure and falls
// through to the next provider.
var errNoData = errors.New("no data returned")

// Bar is one normalized OHLCV observation. Prices are fixed-point decimals so
// values survive round-trips across providers without binary-float drift.
type Bar struct {
	Timestamp time.Time
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    int64
}

// SeriesProvider fetches a historical OHLCV series for one symbol.
// Implementations return their bars newest first.
type SeriesProvider interface {
	Name() string
	// Configured reports whether required credentials are present. An
	// unconfigured provider is skipped entirely.
	Configured() bool
	// Keyed reports whether calls count against an API-key quota; the chain
	// spaces keyed calls out to respect provider limits.
	Keyed() bool
	Supports(marketType string) bool
	Series(ctx context.Context, symbol, marketType, interval, period string) ([]Bar, error)
}

// QuoteProvider fetches only the latest price, for upstreams that expose a
// cheaper quote-only call.
type QuoteProvider interface {
	Name() string
	Configured() bool
	Supports(marketType string) bool
	Quote(ctx context.Context, symbol, marketType string) (decimal.Decimal, error)
}

// barFromStrings builds a Bar from the string-typed fields most provider
// payloads carry. An empty volume is treated as zero.
func barFromStrings(ts time.Time, open, high, low, closePrice, volume string) (Bar, error) {
	o, err := decimal.NewFromString(open)
	if err != nil {
		return Bar{}, fmt.Errorf("bad open %q: %w", open, err)
	}
	h, err := decimal.NewFromString(high)
	if err != nil {
		return Bar{}, fmt.Errorf("bad high %q: %w", high, err)
	}
	l, err := decimal.NewFromString(low)
	if err != nil {
		return Bar{}, fmt.Errorf("bad low %q: %w", low, err)
	}
	c, err := decimal.NewFromString(closePrice)
	if err != nil {
		return Bar{}, fmt.Errorf("bad close %q: %w", closePrice, err)
	}
	var v int64
	if volume != "" {
		v, err = strconv.ParseInt(volume, 10, 64)
		if err != nil {
			return Bar{}, fmt.Errorf("bad volume %q: %w", volume, err)
		}
	}
	return Bar{Timestamp: ts, Open: o, High: h, Low: l, Close: c, Volume: v}, nil
}
