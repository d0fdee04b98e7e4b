package updater

import (
	"context"
	"errors"
	"sync"
	"time"

	"stockchart-engine/internal/marketdata"
	"stockchart-engine/internal/models"
	"stockchart-engine/internal/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DataSource is the slice of the provider chain the updater needs.
type DataSource interface {
	Series(ctx context.Context, symbol, marketType, interval, period string) []marketdata.Bar
	Quote(ctx context.Context, symbol, marketType string) (decimal.Decimal, bool)
}

// Notifier is told after a prediction resolves, once the row is committed in
// its final state. Delivery itself lives outside this engine.
type Notifier interface {
	PredictionResolved(p *models.Prediction)
}

// LogNotifier is the default Notifier; it only records the event.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n *LogNotifier) PredictionResolved(p *models.Prediction) {
	n.Logger.Info("prediction resolved notification",
		zap.String("prediction_id", p.ID.String()),
		zap.Uint("user_id", p.UserID))
}

// Updater owns the two scheduler entry points: market refresh and prediction
// reconciliation. Both run to completion within one invocation; periodicity
// belongs to the scheduler.
type Updater struct {
	logger   *zap.Logger
	source   DataSource
	store    *store.Store
	notifier Notifier

	mu            sync.Mutex
	lastRefresh   time.Time
	lastReconcile time.Time
	newRecords    int
	resolvedCount int
}

// New creates an Updater. A nil notifier falls back to logging only.
func New(logger *zap.Logger, source DataSource, st *store.Store, notifier Notifier) *Updater {
	if notifier == nil {
		notifier = &LogNotifier{Logger: logger}
	}
	return &Updater{
		logger:   logger,
		source:   source,
		store:    st,
		notifier: notifier,
	}
}

// RefreshMarkets fetches the latest daily bar for every active market and
// stores whatever is not already present. One market's failure never blocks
// the rest; a market with no data this cycle is simply retried next cycle.
func (u *Updater) RefreshMarkets(ctx context.Context) {
	markets, err := u.store.ActiveMarkets(ctx)
	if err != nil {
		u.logger.Error("failed to list active markets", zap.Error(err))
		return
	}

	inserted := 0
	for _, market := range markets {
		bars := u.source.Series(ctx, market.APISymbol, market.MarketType, "1day", "1d")
		if len(bars) == 0 {
			u.logger.Warn("no data for market this cycle", zap.String("symbol", market.Symbol))
			continue
		}

		// Only the newest observation; history is the backfill's job.
		n, err := u.store.SavePriceBars(ctx, &market, bars[:1])
		if err != nil {
			u.logger.Error("failed to save price data",
				zap.String("symbol", market.Symbol), zap.Error(err))
			continue
		}
		inserted += n
	}

	u.mu.Lock()
	u.lastRefresh = time.Now()
	u.newRecords += inserted
	u.mu.Unlock()

	u.logger.Info("market refresh complete",
		zap.Int("markets", len(markets)),
		zap.Int("new_records", inserted))
}

// ReconcilePredictions resolves every prediction whose target date has
// passed, provided a current price can be obtained. A prediction without a
// price stays pending, completely unmodified, and is retried next pass.
func (u *Updater) ReconcilePredictions(ctx context.Context) {
	due, err := u.store.DuePredictions(ctx, time.Now())
	if err != nil {
		u.logger.Error("failed to select due predictions", zap.Error(err))
		return
	}

	resolved := 0
	for _, p := range due {
		price, ok := u.source.Quote(ctx, p.Market.APISymbol, p.Market.MarketType)
		if !ok {
			u.logger.Warn("current price unavailable, leaving prediction pending",
				zap.String("prediction_id", p.ID.String()),
				zap.String("symbol", p.Market.Symbol))
			continue
		}

		updated, err := u.store.ResolvePrediction(ctx, p.ID, price)
		if err != nil {
			if errors.Is(err, store.ErrNotPending) {
				// resolved by a concurrent pass between selection and update
				continue
			}
			u.logger.Error("failed to resolve prediction",
				zap.String("prediction_id", p.ID.String()), zap.Error(err))
			continue
		}

		resolved++
		u.logger.Info("prediction resolved",
			zap.String("prediction_id", updated.ID.String()),
			zap.String("symbol", p.Market.Symbol),
			zap.String("actual_price", price.String()),
			zap.Float64("accuracy", *updated.AccuracyPercentage))
		u.notifier.PredictionResolved(updated)
	}

	u.mu.Lock()
	u.lastReconcile = time.Now()
	u.resolvedCount += resolved
	u.mu.Unlock()

	u.logger.Info("reconciliation complete",
		zap.Int("due", len(due)),
		zap.Int("resolved", resolved))
}

// Backfill fetches a longer history for active markets, or a single market
// when symbol is non-empty. Used by the one-shot backfill binary.
func (u *Updater) Backfill(ctx context.Context, symbol, period string) error {
	markets, err := u.store.ActiveMarkets(ctx)
	if err != nil {
		return err
	}

	matched := false
	for _, market := range markets {
		if symbol != "" && market.Symbol != symbol {
			continue
		}
		matched = true

		bars := u.source.Series(ctx, market.APISymbol, market.MarketType, "1day", period)
		if len(bars) == 0 {
			u.logger.Warn("no historical data available", zap.String("symbol", market.Symbol))
			continue
		}

		n, err := u.store.SavePriceBars(ctx, &market, bars)
		if err != nil {
			u.logger.Error("failed to save backfill data",
				zap.String("symbol", market.Symbol), zap.Error(err))
			continue
		}
		u.logger.Info("backfilled market",
			zap.String("symbol", market.Symbol),
			zap.Int("fetched", len(bars)),
			zap.Int("new_records", n))
	}

	if symbol != "" && !matched {
		return errors.New("no active market with symbol " + symbol)
	}
	return nil
}

// Status is a snapshot for the ops endpoints.
type Status struct {
	LastRefresh   time.Time `json:"last_refresh"`
	LastReconcile time.Time `json:"last_reconcile"`
	NewRecords    int       `json:"new_records"`
	Resolved      int       `json:"resolved_predictions"`
}

func (u *Updater) Status() Status {
	u.mu.Lock()
	defer u.mu.Unlock()
	return Status{
		LastRefresh:   u.lastRefresh,
		LastReconcile: u.lastReconcile,
		NewRecords:    u.newRecords,
		Resolved:      u.resolvedCount,
	}
}
