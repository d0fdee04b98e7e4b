package models

import (
	"time"

	"gorm.io/gorm"
)

// User account tiers.
const (
	UserTypeFree    = "free"
	UserTypePremium = "premium"
	UserTypeAdmin   = "admin"
)

// User carries the account fields the prediction engine touches: the free-tier
// quota and the running accuracy aggregate.
//
// TotalAccuracyRate is an online mean over all completed predictions. It is
// only ever advanced through the accuracy ledger (see AccuracyEvent), one
// resolved prediction at a time.
type User struct {
	gorm.Model
	Email                    string `gorm:"uniqueIndex;not null"`
	Username                 string
	UserType                 string `gorm:"default:free"`
	PremiumExpiryDate        *time.Time
	FreePredictionsRemaining int     `gorm:"default:3"`
	TotalPredictions         int     `gorm:"default:0"`
	TotalAccuracyRate        float64 `gorm:"default:0"`
}

// IsPremium reports whether the user holds an active premium subscription.
// Admins are treated as premium.
func (u *User) IsPremium(now time.Time) bool {
	if u.UserType == UserTypeAdmin {
		return true
	}
	if u.UserType != UserTypePremium {
		return false
	}
	return u.PremiumExpiryDate != nil && u.PremiumExpiryDate.After(now)
}
