package models

import (
	"time"

	"github.com/google/uuid"
)

// AccuracyEvent is one append-only ledger entry for a resolved prediction.
// The user's running accuracy mean is derived by folding these events in one
// at a time; rows are never updated or deleted.
type AccuracyEvent struct {
	ID           uint      `gorm:"primaryKey"`
	PredictionID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	UserID       uint      `gorm:"index;not null"`
	Accuracy     float64   `gorm:"not null"`
	RecordedAt   time.Time
}
