package models

import (
	"errors"
	"fmt"
	"math"
)

// Source identifies where a valuation came from.
type Source string

const (
	SourcePrimary   Source = "primary"   // intraday estimator
	SourceSecondary Source = "secondary" // official snapshot
	SourceOffline   Source = "offline"   // no quote, cost basis
)

// ErrNonFinite is returned when a provider produced NaN or Inf for a numeric field.
var ErrNonFinite = errors.New("non-finite value")

// Quote is a normalized realtime valuation from one provider.
// Build it with NewQuote so the numeric fields are known to be finite.
type Quote struct {
	Source        Source  `json:"source"`
	Name          string  `json:"name"`
	Estimate      float64 `json:"estimate"`       // current per-share value
	LastNetValue  float64 `json:"last_net_value"` // last official per-share value
	PercentChange float64 `json:"percent_change"`
	Timestamp     string  `json:"timestamp"` // display only
}

// NewQuote validates the numeric fields and returns a Quote.
func NewQuote(source Source, name string, estimate, lastNetValue, percentChange float64, timestamp string) (*Quote, error) {
	fields := []struct {
		name  string
		value float64
	}{
		{"estimate", estimate},
		{"last_net_value", lastNetValue},
		{"percent_change", percentChange},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return nil, fmt.Errorf("%w: %s", ErrNonFinite, f.name)
		}
	}
	return &Quote{
		Source:        source,
		Name:          name,
		Estimate:      estimate,
		LastNetValue:  lastNetValue,
		PercentChange: percentChange,
		Timestamp:     timestamp,
	}, nil
}

// PercentChangeOf derives the percent difference between an estimate and the
// last net value. A zero last net value yields 0.
func PercentChangeOf(estimate, lastNetValue float64) float64 {
	if lastNetValue == 0 {
		return 0
	}
	return (estimate - lastNetValue) / lastNetValue * 100
}

// SessionState classifies the wall-clock time for the fallback policy.
type SessionState string

const (
	SessionWeekend      SessionState = "weekend"
	SessionTradingHours SessionState = "trading_hours"
	SessionOffHours     SessionState = "off_hours"
)
