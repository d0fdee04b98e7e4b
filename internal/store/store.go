package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stockchart-engine/internal/marketdata"
	"stockchart-engine/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotPending is returned when an operation requires a pending prediction
// and the row has already moved on (or been expired).
var ErrNotPending = errors.New("prediction is not pending")

// ErrNoQuota is returned when a free-tier user has no prediction slots left.
var ErrNoQuota = errors.New("no free predictions remaining")

// ErrConfidenceRange is returned when a prediction's confidence level falls
// outside 1-100.
var ErrConfidenceRange = errors.New("confidence level must be between 1 and 100")

// Store wraps the relational store with the operations the engine needs.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

func New(db *gorm.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// ActiveMarkets lists the markets the refresh pass should fetch, in stable
// symbol order.
func (s *Store) ActiveMarkets(ctx context.Context) ([]models.Market, error) {
	var markets []models.Market
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("symbol").
		Find(&markets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active markets: %w", err)
	}
	return markets, nil
}

// SavePriceBars inserts bars not yet present for the market. The
// (market, timestamp) pair is unique and stored rows are authoritative: a
// re-fetch never overwrites existing values, so repeated fetches are
// idempotent. The conflict is resolved in the insert itself, so a concurrent
// writer (backfill alongside the updater) cannot make the pair fail.
// Returns the number of rows actually inserted.
func (s *Store) SavePriceBars(ctx context.Context, market *models.Market, bars []marketdata.Bar) (int, error) {
	inserted := 0
	for _, bar := range bars {
		record := models.StockData{
			MarketID:   market.ID,
			Timestamp:  bar.Timestamp,
			OpenPrice:  bar.Open,
			HighPrice:  bar.High,
			LowPrice:   bar.Low,
			ClosePrice: bar.Close,
			Volume:     bar.Volume,
		}
		res := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "market_id"}, {Name: "timestamp"}},
				DoNothing: true,
			}).
			Create(&record)
		if res.Error != nil {
			return inserted, fmt.Errorf("failed to save price record for '%s': %w", market.Symbol, res.Error)
		}
		if res.RowsAffected > 0 {
			inserted++
		}
	}
	return inserted, nil
}

// DuePredictions selects every pending prediction whose target date has
// passed, with its market preloaded for the price lookup.
func (s *Store) DuePredictions(ctx context.Context, now time.Time) ([]models.Prediction, error) {
	var due []models.Prediction
	err := s.db.WithContext(ctx).
		Preload("Market").
		Where("status = ? AND target_date <= ?", models.StatusPending, now).
		Find(&due).Error
	if err != nil {
		return nil, fmt.Errorf("failed to select due predictions: %w", err)
	}
	return due, nil
}

// ResolvePrediction marks a due prediction completed with the realized price
// and folds the resulting accuracy into the owner's running statistics. The
// prediction update, the ledger append and the aggregate update commit as a
// single transaction. A prediction that is no longer pending is left
// untouched and ErrNotPending is returned.
func (s *Store) ResolvePrediction(ctx context.Context, predictionID uuid.UUID, actual decimal.Decimal) (*models.Prediction, error) {
	var resolved *models.Prediction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Prediction
		if err := tx.First(&p, "id = ?", predictionID).Error; err != nil {
			return fmt.Errorf("failed to load prediction: %w", err)
		}
		if p.Status != models.StatusPending {
			return ErrNotPending
		}

		accuracy := p.CalculateAccuracy(actual)
		p.ActualPrice = &actual
		p.AccuracyPercentage = &accuracy
		p.Status = models.StatusCompleted
		if err := tx.Save(&p).Error; err != nil {
			return fmt.Errorf("failed to update prediction: %w", err)
		}

		if err := recordAccuracy(tx, &p, accuracy); err != nil {
			return err
		}

		resolved = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

// recordAccuracy appends one ledger row and advances the user's online mean:
// new_mean = (old_mean*old_count + value) / (old_count+1).
func recordAccuracy(tx *gorm.DB, p *models.Prediction, accuracy float64) error {
	event := models.AccuracyEvent{
		PredictionID: p.ID,
		UserID:       p.UserID,
		Accuracy:     accuracy,
		RecordedAt:   time.Now(),
	}
	if err := tx.Create(&event).Error; err != nil {
		return fmt.Errorf("failed to append accuracy event: %w", err)
	}

	var user models.User
	if err := tx.First(&user, p.UserID).Error; err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	total := user.TotalAccuracyRate * float64(user.TotalPredictions)
	user.TotalPredictions++
	user.TotalAccuracyRate = (total + accuracy) / float64(user.TotalPredictions)
	if err := tx.Save(&user).Error; err != nil {
		return fmt.Errorf("failed to update user accuracy: %w", err)
	}
	return nil
}

// CreatePrediction stores a new pending prediction, consuming one free-tier
// slot unless the user holds an active premium subscription. A zero
// confidence level takes the default of 50; anything else outside 1-100 is
// rejected.
func (s *Store) CreatePrediction(ctx context.Context, p *models.Prediction) error {
	if p.ConfidenceLevel == 0 {
		p.ConfidenceLevel = 50
	}
	if p.ConfidenceLevel < 1 || p.ConfidenceLevel > 100 {
		return ErrConfidenceRange
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		var user models.User
		if err := tx.First(&user, p.UserID).Error; err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}
		if !user.IsPremium(now) {
			if user.FreePredictionsRemaining <= 0 {
				return ErrNoQuota
			}
			user.FreePredictionsRemaining--
			if err := tx.Save(&user).Error; err != nil {
				return fmt.Errorf("failed to consume prediction quota: %w", err)
			}
		}

		p.Status = models.StatusPending
		if p.PredictionDate.IsZero() {
			p.PredictionDate = now
		}
		if p.DurationDays == 0 {
			p.DurationDays = int(p.TargetDate.Sub(p.PredictionDate).Hours() / 24)
		}
		if err := tx.Create(p).Error; err != nil {
			return fmt.Errorf("failed to create prediction: %w", err)
		}
		return nil
	})
}

// DeletePrediction removes a prediction. Manual deletion is only permitted
// while the prediction is still pending.
func (s *Store) DeletePrediction(ctx context.Context, predictionID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND status = ?", predictionID, models.StatusPending).
		Delete(&models.Prediction{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete prediction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotPending
	}
	return nil
}

// ExpirePrediction is an administrative action; nothing in the engine
// schedules it. Only pending predictions can be expired, and an expired
// prediction never resolves.
func (s *Store) ExpirePrediction(ctx context.Context, predictionID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Model(&models.Prediction{}).
		Where("id = ? AND status = ?", predictionID, models.StatusPending).
		Update("status", models.StatusExpired)
	if res.Error != nil {
		return fmt.Errorf("failed to expire prediction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotPending
	}
	return nil
}
