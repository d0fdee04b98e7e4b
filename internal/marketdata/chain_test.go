package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"stockchart-engine/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// stubProvider implements both provider interfaces for chain-order tests.
type stubProvider struct {
	name       string
	configured bool
	keyed      bool
	supports   func(string) bool

	bars     []Bar
	price    decimal.Decimal
	err      error
	called   int
	quotedAt int
}

func (s *stubProvider) Name() string     { return s.name }
func (s *stubProvider) Configured() bool { return s.configured }
func (s *stubProvider) Keyed() bool      { return s.keyed }

func (s *stubProvider) Supports(marketType string) bool {
	if s.supports == nil {
		return true
	}
	return s.supports(marketType)
}

func (s *stubProvider) Series(ctx context.Context, symbol, marketType, interval, period string) ([]Bar, error) {
	s.called++
	return s.bars, s.err
}

func (s *stubProvider) Quote(ctx context.Context, symbol, marketType string) (decimal.Decimal, error) {
	s.quotedAt++
	return s.price, s.err
}

func testBars() []Bar {
	c := decimal.NewFromInt(100)
	return []Bar{{Timestamp: time.Now().UTC(), Open: c, High: c, Low: c, Close: c, Volume: 10}}
}

func newTestChain(series []SeriesProvider, quotes []QuoteProvider) *Chain {
	return &Chain{
		series:  series,
		quotes:  quotes,
		limiter: rate.NewLimiter(rate.Inf, 1), // no pauses in tests
		logger:  zap.NewNop(),
	}
}

func TestChainSeriesFirstSuccessWins(t *testing.T) {
	primary := &stubProvider{name: "primary", configured: true, keyed: true, bars: testBars()}
	backup := &stubProvider{name: "backup", configured: true, keyed: true, bars: testBars()}
	chain := newTestChain([]SeriesProvider{primary, backup}, nil)

	bars := chain.Series(context.Background(), "AAPL", models.MarketUSStock, "1day", "1d")

	assert.Len(t, bars, 1)
	assert.Equal(t, 1, primary.called)
	assert.Equal(t, 0, backup.called, "backup must not be called when primary succeeds")
}

func TestChainSeriesSkipsUnconfigured(t *testing.T) {
	primary := &stubProvider{name: "primary", configured: false, keyed: true, bars: testBars()}
	backup := &stubProvider{name: "backup", configured: true, keyed: true, bars: testBars()}
	chain := newTestChain([]SeriesProvider{primary, backup}, nil)

	bars := chain.Series(context.Background(), "AAPL", models.MarketUSStock, "1day", "1d")

	assert.Len(t, bars, 1)
	assert.Equal(t, 0, primary.called, "unconfigured provider must be skipped entirely")
	assert.Equal(t, 1, backup.called)
}

func TestChainSeriesFallsThroughOnError(t *testing.T) {
	primary := &stubProvider{name: "primary", configured: true, keyed: true, err: errors.New("rate limited")}
	backup := &stubProvider{name: "backup", configured: true, keyed: false, bars: testBars()}
	chain := newTestChain([]SeriesProvider{primary, backup}, nil)

	bars := chain.Series(context.Background(), "AAPL", models.MarketUSStock, "1day", "1d")

	assert.Len(t, bars, 1)
	assert.Equal(t, 1, primary.called)
	assert.Equal(t, 1, backup.called)
}

func TestChainSeriesSkipsUnsupportedCategory(t *testing.T) {
	usOnly := &stubProvider{
		name: "us_only", configured: true, keyed: true, bars: testBars(),
		supports: func(mt string) bool { return mt == models.MarketUSStock },
	}
	free := &stubProvider{name: "free", configured: true, bars: testBars()}
	chain := newTestChain([]SeriesProvider{usOnly, free}, nil)

	bars := chain.Series(context.Background(), "005930", models.MarketKRStock, "1day", "1d")

	assert.Len(t, bars, 1)
	assert.Equal(t, 0, usOnly.called)
	assert.Equal(t, 1, free.called)
}

func TestChainSeriesAllFail(t *testing.T) {
	a := &stubProvider{name: "a", configured: true, err: errors.New("down")}
	b := &stubProvider{name: "b", configured: true, err: errNoData}
	chain := newTestChain([]SeriesProvider{a, b}, nil)

	bars := chain.Series(context.Background(), "AAPL", models.MarketUSStock, "1day", "1d")

	assert.Nil(t, bars, "exhausting every provider yields nil, not a panic or error")
	assert.Equal(t, 1, a.called)
	assert.Equal(t, 1, b.called)
}

func TestChainQuoteRoutesByCategory(t *testing.T) {
	realtime := &stubProvider{name: "realtime", configured: true, err: errors.New("down")}
	cryptoOnly := &stubProvider{
		name: "crypto_only", configured: true, price: decimal.NewFromInt(67000),
		supports: func(mt string) bool { return mt == models.MarketCrypto },
	}
	stocksOnly := &stubProvider{
		name: "stocks_only", configured: true, price: decimal.NewFromInt(187),
		supports: func(mt string) bool { return mt != models.MarketCrypto },
	}
	chain := newTestChain(nil, []QuoteProvider{realtime, cryptoOnly, stocksOnly})

	price, ok := chain.Quote(context.Background(), "BTCUSD", models.MarketCrypto)
	assert.True(t, ok)
	assert.Equal(t, "67000", price.String())
	assert.Equal(t, 0, stocksOnly.quotedAt)

	price, ok = chain.Quote(context.Background(), "AAPL", models.MarketUSStock)
	assert.True(t, ok)
	assert.Equal(t, "187", price.String())
	assert.Equal(t, 1, cryptoOnly.quotedAt, "crypto provider must not serve stock quotes")
}

func TestChainQuoteAllFail(t *testing.T) {
	a := &stubProvider{name: "a", configured: true, err: errors.New("down")}
	b := &stubProvider{name: "b", configured: false, price: decimal.NewFromInt(1)}
	chain := newTestChain(nil, []QuoteProvider{a, b})

	_, ok := chain.Quote(context.Background(), "AAPL", models.MarketUSStock)

	assert.False(t, ok)
	assert.Equal(t, 0, b.quotedAt)
}

func TestChainQuoteIgnoresNonPositivePrice(t *testing.T) {
	zero := &stubProvider{name: "zero", configured: true, price: decimal.Zero}
	good := &stubProvider{name: "good", configured: true, price: decimal.NewFromInt(42)}
	chain := newTestChain(nil, []QuoteProvider{zero, good})

	price, ok := chain.Quote(context.Background(), "AAPL", models.MarketUSStock)

	assert.True(t, ok)
	assert.Equal(t, "42", price.String())
}
