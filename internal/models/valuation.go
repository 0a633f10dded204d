package models

import "time"

// NoUpdateTime is displayed when a valuation has no provider timestamp.
const NoUpdateTime = "--"

// ValuationView is the derived valuation of one holding.
type ValuationView struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	Shares        float64 `json:"shares"`
	Cost          float64 `json:"cost"`
	Estimate      float64 `json:"estimate"`
	LastNetValue  float64 `json:"last_net_value"`
	PercentChange float64 `json:"percent_change"`
	MarketValue   float64 `json:"market_value"`
	DayProfit     float64 `json:"day_profit"`
	TotalProfit   float64 `json:"total_profit"`
	UpdateTime    string  `json:"update_time"`
	Source        Source  `json:"source"`
}

// Summary aggregates all views of a portfolio.
type Summary struct {
	TotalMarketValue float64   `json:"total_market_value"`
	TotalDayProfit   float64   `json:"total_day_profit"`
	TotalHoldProfit  float64   `json:"total_hold_profit"`
	ResolvedAt       time.Time `json:"resolved_at"`
	UpdatedAt        string    `json:"updated_at"` // HH:MM:SS of ResolvedAt
}

// Valuation is the full result of valuing a portfolio.
type Valuation struct {
	Session SessionState    `json:"session"`
	Data    []ValuationView `json:"data"`
	Summary Summary         `json:"summary"`
}
