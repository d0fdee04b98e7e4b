package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const finnhubBaseURL = "https://finnhub.io/api/v1"

// Finnhub is a keyed real-time quote provider. It has no history endpoint on
// the free tier, so its series result is a single synthesized bar carrying
// the current quote.
type Finnhub struct {
	client *resty.Client
	token  string
	logger *zap.Logger
}

func NewFinnhub(token string, timeout time.Duration, logger *zap.Logger) *Finnhub {
	return &Finnhub{
		client: resty.New().SetBaseURL(finnhubBaseURL).SetTimeout(timeout),
		token:  token,
		logger: logger,
	}
}

func (f *Finnhub) Name() string { return "finnhub" }

func (f *Finnhub) Configured() bool { return f.token != "" }

func (f *Finnhub) Keyed() bool { return true }

func (f *Finnhub) Supports(marketType string) bool { return true }

type finnhubQuote struct {
	Current   float64 `json:"c"`
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	PrevClose float64 `json:"pc"`
}

func (f *Finnhub) fetchQuote(ctx context.Context, symbol string) (*finnhubQuote, error) {
	var out finnhubQuote
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol": symbol,
			"token":  f.token,
		}).
		SetResult(&out).
		Get("/quote")
	if err != nil {
		return nil, fmt.Errorf("finnhub request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("finnhub returned status %s", resp.Status())
	}
	// Finnhub reports unknown symbols as an all-zero quote.
	if out.Current <= 0 {
		return nil, errNoData
	}
	return &out, nil
}

func (f *Finnhub) Series(ctx context.Context, symbol, marketType, interval, period string) ([]Bar, error) {
	q, err := f.fetchQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	c := decimal.NewFromFloat(q.Current)
	bar := Bar{Timestamp: time.Now().UTC(), Open: c, High: c, Low: c, Close: c}
	if q.Open > 0 {
		bar.Open = decimal.NewFromFloat(q.Open)
	}
	if q.High > 0 {
		bar.High = decimal.NewFromFloat(q.High)
	}
	if q.Low > 0 {
		bar.Low = decimal.NewFromFloat(q.Low)
	}
	return []Bar{bar}, nil
}

func (f *Finnhub) Quote(ctx context.Context, symbol, marketType string) (decimal.Decimal, error) {
	q, err := f.fetchQuote(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromFloat(q.Current), nil
}
