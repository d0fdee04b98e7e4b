package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Prediction statuses. A prediction moves pending -> completed exactly once,
// when its target date has passed and a current price could be obtained.
// The expired status is only reachable through an explicit administrative
// action; nothing in the engine schedules it.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusExpired   = "expired"
)

// Prediction is a user's forecast of a market's price at a future date.
// ActualPrice and AccuracyPercentage stay nil until the prediction resolves.
type Prediction struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID             uint      `gorm:"index;not null"`
	User               User
	MarketID           uint `gorm:"index;not null"`
	Market             Market
	PredictionDate     time.Time
	TargetDate         time.Time        `gorm:"index;not null"`
	CurrentPrice       decimal.Decimal  `gorm:"type:numeric(15,4)"`
	PredictedPrice     decimal.Decimal  `gorm:"type:numeric(15,4)"`
	ActualPrice        *decimal.Decimal `gorm:"type:numeric(15,4)"`
	AccuracyPercentage *float64
	Status             string `gorm:"default:pending;index"`
	DurationDays       int
	ConfidenceLevel    int `gorm:"default:50"` // 1-100
	Notes              string
	IsPublic           bool `gorm:"default:true"`
	LikesCount         int  `gorm:"default:0"`
	ViewsCount         int  `gorm:"default:0"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (p *Prediction) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// CalculateAccuracy scores how closely the predicted magnitude of change
// matched the realized magnitude, as a 0-100 percentage. Direction of the
// move is deliberately ignored: a prediction whose size of move matches the
// actual size scores 100 even if the sign differed.
func (p *Prediction) CalculateAccuracy(actual decimal.Decimal) float64 {
	predictedChange := p.PredictedPrice.Sub(p.CurrentPrice).Abs()
	actualChange := actual.Sub(p.CurrentPrice).Abs()

	if predictedChange.IsZero() {
		if actualChange.IsZero() {
			return 100
		}
		return 0
	}

	errorRate := predictedChange.Sub(actualChange).Abs().Div(predictedChange)
	accuracy, _ := decimal.NewFromInt(100).Sub(errorRate.Mul(decimal.NewFromInt(100))).Float64()
	if accuracy < 0 {
		return 0
	}
	return accuracy
}

// IsDue reports whether the target date has passed.
func (p *Prediction) IsDue(now time.Time) bool {
	return !now.Before(p.TargetDate)
}
