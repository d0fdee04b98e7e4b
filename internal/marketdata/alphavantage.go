package marketdata

import (
	"context"
	"fmt"
	"sort"
	"time"

	"stockchart-engine/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const alphaVantageBaseURL = "https://www.alphavantage.co"

// AlphaVantage is the primary keyed provider: a daily time series for US
// stocks and crypto, plus a GLOBAL_QUOTE latest-price call. Rate limiting
// shows up in-band as a "Note" field on an otherwise 200 response.
type AlphaVantage struct {
	client *resty.Client
	apiKey string
	logger *zap.Logger
}

func NewAlphaVantage(apiKey string, timeout time.Duration, logger *zap.Logger) *AlphaVantage {
	return &AlphaVantage{
		client: resty.New().SetBaseURL(alphaVantageBaseURL).SetTimeout(timeout),
		apiKey: apiKey,
		logger: logger,
	}
}

func (a *AlphaVantage) Name() string { return "alpha_vantage" }

func (a *AlphaVantage) Configured() bool { return a.apiKey != "" }

func (a *AlphaVantage) Keyed() bool { return true }

// Supports limits Alpha Vantage to the categories its daily series covers.
func (a *AlphaVantage) Supports(marketType string) bool {
	return marketType == models.MarketUSStock || marketType == models.MarketCrypto
}

type alphaVantageBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

type alphaVantageSeriesResponse struct {
	Note         string                    `json:"Note"`
	ErrorMessage string                    `json:"Error Message"`
	TimeSeries   map[string]alphaVantageBar `json:"Time Series (Daily)"`
}

func (a *AlphaVantage) Series(ctx context.Context, symbol, marketType, interval, period string) ([]Bar, error) {
	var out alphaVantageSeriesResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"function":   "TIME_SERIES_DAILY",
			"symbol":     symbol,
			"apikey":     a.apiKey,
			"outputsize": "compact",
		}).
		SetResult(&out).
		Get("/query")
	if err != nil {
		return nil, fmt.Errorf("alpha vantage request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("alpha vantage returned status %s", resp.Status())
	}
	if out.Note != "" {
		return nil, fmt.Errorf("alpha vantage rate limit: %s", out.Note)
	}
	if out.ErrorMessage != "" {
		return nil, fmt.Errorf("alpha vantage error: %s", out.ErrorMessage)
	}
	if len(out.TimeSeries) == 0 {
		return nil, errNoData
	}

	bars := make([]Bar, 0, len(out.TimeSeries))
	for date, v := range out.TimeSeries {
		ts, err := time.ParseInLocation("2006-01-02", date, time.UTC)
		if err != nil {
			a.logger.Warn("skipping alpha vantage point with bad date",
				zap.String("date", date), zap.Error(err))
			continue
		}
		bar, err := barFromStrings(ts, v.Open, v.High, v.Low, v.Close, v.Volume)
		if err != nil {
			a.logger.Warn("skipping malformed alpha vantage point",
				zap.String("date", date), zap.Error(err))
			continue
		}
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		return nil, errNoData
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp.After(bars[j].Timestamp) })
	if len(bars) > maxSeriesPoints {
		bars = bars[:maxSeriesPoints]
	}
	return bars, nil
}

type alphaVantageQuoteResponse struct {
	GlobalQuote struct {
		Price string `json:"05. price"`
	} `json:"Global Quote"`
}

func (a *AlphaVantage) Quote(ctx context.Context, symbol, marketType string) (decimal.Decimal, error) {
	var out alphaVantageQuoteResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"function": "GLOBAL_QUOTE",
			"symbol":   symbol,
			"apikey":   a.apiKey,
		}).
		SetResult(&out).
		Get("/query")
	if err != nil {
		return decimal.Zero, fmt.Errorf("alpha vantage quote request failed: %w", err)
	}
	if resp.IsError() {
		return decimal.Zero, fmt.Errorf("alpha vantage returned status %s", resp.Status())
	}
	if out.GlobalQuote.Price == "" {
		return decimal.Zero, errNoData
	}

	price, err := decimal.NewFromString(out.GlobalQuote.Price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("alpha vantage quote bad price %q: %w", out.GlobalQuote.Price, err)
	}
	return price, nil
}
