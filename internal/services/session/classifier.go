// Package session classifies wall-clock time into trading session states
package session

import (
	"time"

	"github.com/bobmcallan/fundwatch/internal/models"
)

// Trading window, inclusive on both ends at hour granularity.
// No holiday calendar and no minute-level open/close.
const (
	OpenHour  = 9
	CloseHour = 15
)

// Classify returns the session state for t in t's own location.
// Weekend takes precedence over the hour check.
func Classify(t time.Time) models.SessionState {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return models.SessionWeekend
	}
	if h := t.Hour(); h >= OpenHour && h <= CloseHour {
		return models.SessionTradingHours
	}
	return models.SessionOffHours
}

// Classifier classifies the current time in a fixed location.
type Classifier struct {
	loc *time.Location
	now func() time.Time // injectable clock for testing
}

// NewClassifier creates a classifier for loc; nil means time.Local.
func NewClassifier(loc *time.Location) *Classifier {
	if loc == nil {
		loc = time.Local
	}
	return &Classifier{loc: loc, now: time.Now}
}

// WithClock replaces the clock, returning the classifier for chaining.
func (c *Classifier) WithClock(now func() time.Time) *Classifier {
	c.now = now
	return c
}

// Now returns the current time in the classifier's location.
func (c *Classifier) Now() time.Time {
	return c.now().In(c.loc)
}

// Current classifies the current time.
func (c *Classifier) Current() models.SessionState {
	return Classify(c.Now())
}

// Location returns the location used for classification.
func (c *Classifier) Location() *time.Location {
	return c.loc
}
