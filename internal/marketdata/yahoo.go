package marketdata

import (
	"context"
	"fmt"
	"time"

	"stockchart-engine/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// Period vocabulary mapped onto Yahoo chart ranges.
var yahooRanges = map[string]string{
	"1d":     "1d",
	"5d":     "5d",
	"1month": "1mo",
	"3month": "3mo",
	"6month": "6mo",
	"1year":  "1y",
	"5year":  "5y",
}

// Yahoo is the free, unauthenticated historical fallback. Non-US symbols are
// translated to their exchange-suffixed form before lookup.
type Yahoo struct {
	client *resty.Client
	logger *zap.Logger
}

func NewYahoo(timeout time.Duration, logger *zap.Logger) *Yahoo {
	return &Yahoo{
		client: resty.New().SetBaseURL(yahooBaseURL).SetTimeout(timeout),
		logger: logger,
	}
}

func (y *Yahoo) Name() string { return "yahoo_finance" }

func (y *Yahoo) Configured() bool { return true }

func (y *Yahoo) Keyed() bool { return false }

func (y *Yahoo) Supports(marketType string) bool { return true }

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (y *Yahoo) fetchChart(ctx context.Context, symbol, rng string) (*yahooChartResponse, error) {
	var out yahooChartResponse
	resp, err := y.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"range":    rng,
			"interval": "1d",
		}).
		SetResult(&out).
		Get("/v8/finance/chart/" + symbol)
	if err != nil {
		return nil, fmt.Errorf("yahoo finance request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("yahoo finance returned status %s", resp.Status())
	}
	if out.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo finance error: %s: %s", out.Chart.Error.Code, out.Chart.Error.Description)
	}
	if len(out.Chart.Result) == 0 {
		return nil, errNoData
	}
	return &out, nil
}

func (y *Yahoo) Series(ctx context.Context, symbol, marketType, interval, period string) ([]Bar, error) {
	rng, ok := yahooRanges[period]
	if !ok {
		rng = "1mo"
	}

	out, err := y.fetchChart(ctx, YahooSymbol(symbol, marketType), rng)
	if err != nil {
		return nil, err
	}

	result := out.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, errNoData
	}
	quote := result.Indicators.Quote[0]

	// Newest first; null points come through as zeros and are dropped.
	// Ragged payloads (quote arrays shorter than timestamp) are clipped to
	// the indexes every array covers.
	n := len(result.Timestamp)
	for _, arr := range [][]float64{quote.Open, quote.High, quote.Low, quote.Close} {
		if len(arr) < n {
			n = len(arr)
		}
	}
	if len(quote.Volume) < n {
		n = len(quote.Volume)
	}

	bars := make([]Bar, 0, n)
	for i := n - 1; i >= 0; i-- {
		if quote.Close[i] <= 0 {
			continue
		}
		bars = append(bars, Bar{
			Timestamp: time.Unix(result.Timestamp[i], 0).UTC(),
			Open:      decimal.NewFromFloat(quote.Open[i]),
			High:      decimal.NewFromFloat(quote.High[i]),
			Low:       decimal.NewFromFloat(quote.Low[i]),
			Close:     decimal.NewFromFloat(quote.Close[i]),
			Volume:    quote.Volume[i],
		})
	}
	if len(bars) == 0 {
		return nil, errNoData
	}
	return bars, nil
}

// Quote serves stock categories; crypto quotes go through CoinGecko instead.
func (y *Yahoo) Quote(ctx context.Context, symbol, marketType string) (decimal.Decimal, error) {
	if marketType == models.MarketCrypto {
		return decimal.Zero, errNoData
	}

	out, err := y.fetchChart(ctx, YahooSymbol(symbol, marketType), "1d")
	if err != nil {
		return decimal.Zero, err
	}

	price := out.Chart.Result[0].Meta.RegularMarketPrice
	if price <= 0 {
		return decimal.Zero, errNoData
	}
	return decimal.NewFromFloat(price), nil
}
