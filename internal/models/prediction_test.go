package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCalculateAccuracy(t *testing.T) {
	tests := []struct {
		name      string
		current   string
		predicted string
		actual    string
		want      float64
	}{
		{
			name:    "zero predicted change and zero actual change",
			current: "100", predicted: "100", actual: "100",
			want: 100,
		},
		{
			name:    "zero predicted change but price moved",
			current: "100", predicted: "100", actual: "110",
			want: 0,
		},
		{
			name:    "half the predicted magnitude realized",
			current: "100", predicted: "120", actual: "110",
			// error_rate = |20-10|/20 = 0.5
			want: 50,
		},
		{
			name:    "exact magnitude match",
			current: "100", predicted: "110", actual: "110",
			want: 100,
		},
		{
			name:    "exact magnitude match in the opposite direction",
			current: "100", predicted: "110", actual: "90",
			want: 100,
		},
		{
			name:    "actual move far larger than predicted clamps at zero",
			current: "100", predicted: "101", actual: "150",
			// error_rate = |1-50|/1 = 49 -> 100 - 4900 clamps to 0
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Prediction{
				CurrentPrice:   dec(tt.current),
				PredictedPrice: dec(tt.predicted),
			}
			got := p.CalculateAccuracy(dec(tt.actual))
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestIsDue(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	p := Prediction{TargetDate: now}

	assert.True(t, p.IsDue(now))
	assert.True(t, p.IsDue(now.Add(time.Hour)))
	assert.False(t, p.IsDue(now.Add(-time.Second)))
}

func TestUserIsPremium(t *testing.T) {
	now := time.Now()
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	assert.False(t, (&User{UserType: UserTypeFree}).IsPremium(now))
	assert.False(t, (&User{UserType: UserTypePremium}).IsPremium(now))
	assert.False(t, (&User{UserType: UserTypePremium, PremiumExpiryDate: &past}).IsPremium(now))
	assert.True(t, (&User{UserType: UserTypePremium, PremiumExpiryDate: &future}).IsPremium(now))
	assert.True(t, (&User{UserType: UserTypeAdmin}).IsPremium(now))
}
