package marketdata

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const twelveDataBaseURL = "https://api.twelvedata.com"

// TwelveData is the keyed backup provider. Unlike Alpha Vantage, the interval
// is configurable, so it serves the whole interval vocabulary.
type TwelveData struct {
	client *resty.Client
	apiKey string
	logger *zap.Logger
}

func NewTwelveData(apiKey string, timeout time.Duration, logger *zap.Logger) *TwelveData {
	return &TwelveData{
		client: resty.New().SetBaseURL(twelveDataBaseURL).SetTimeout(timeout),
		apiKey: apiKey,
		logger: logger,
	}
}

func (t *TwelveData) Name() string { return "twelve_data" }

func (t *TwelveData) Configured() bool { return t.apiKey != "" }

func (t *TwelveData) Keyed() bool { return true }

func (t *TwelveData) Supports(marketType string) bool { return true }

type twelveDataValue struct {
	Datetime string `json:"datetime"`
	Open     string `json:"open"`
	High     string `json:"high"`
	Low      string `json:"low"`
	Close    string `json:"close"`
	Volume   string `json:"volume"`
}

type twelveDataResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Values  []twelveDataValue `json:"values"`
}

func (t *TwelveData) Series(ctx context.Context, symbol, marketType, interval, period string) ([]Bar, error) {
	var out twelveDataResponse
	resp, err := t.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol":     symbol,
			"interval":   interval,
			"apikey":     t.apiKey,
			"outputsize": fmt.Sprintf("%d", maxSeriesPoints),
		}).
		SetResult(&out).
		Get("/time_series")
	if err != nil {
		return nil, fmt.Errorf("twelve data request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("twelve data returned status %s", resp.Status())
	}
	if out.Status == "error" {
		return nil, fmt.Errorf("twelve data error: %s", out.Message)
	}
	if len(out.Values) == 0 {
		return nil, errNoData
	}

	bars := make([]Bar, 0, len(out.Values))
	for _, v := range out.Values {
		ts, err := parseTwelveDataTime(v.Datetime)
		if err != nil {
			t.logger.Warn("skipping twelve data point with bad datetime",
				zap.String("datetime", v.Datetime), zap.Error(err))
			continue
		}
		bar, err := barFromStrings(ts, v.Open, v.High, v.Low, v.Close, v.Volume)
		if err != nil {
			t.logger.Warn("skipping malformed twelve data point",
				zap.String("datetime", v.Datetime), zap.Error(err))
			continue
		}
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		return nil, errNoData
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp.After(bars[j].Timestamp) })
	return bars, nil
}

// parseTwelveDataTime accepts the two timestamp shapes Twelve Data emits:
// date-only for daily bars, date-and-time for intraday intervals.
func parseTwelveDataTime(s string) (time.Time, error) {
	if ts, err := time.ParseInLocation("2006-01-02", s, time.UTC); err == nil {
		return ts, nil
	}
	return time.ParseInLocation("2006-01-02 15:04:05", s, time.UTC)
}
