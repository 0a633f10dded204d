// Package models defines data structures for fundwatch
package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidHolding is returned when a holding fails validation.
var ErrInvalidHolding = errors.New("invalid holding")

// PlaceholderPrefix is prepended to a fund code when no display name is known.
const PlaceholderPrefix = "基金"

// Holding is one fund position owned by the user.
type Holding struct {
	Code   string  `json:"code"`
	Name   string  `json:"name,omitempty"`
	Shares float64 `json:"shares"`
	Cost   float64 `json:"cost"` // per-share cost basis
}

// Validate checks the invariants a holding must satisfy before it is stored.
func (h Holding) Validate() error {
	if strings.TrimSpace(h.Code) == "" {
		return fmt.Errorf("%w: fund code is required", ErrInvalidHolding)
	}
	if !(h.Shares > 0) {
		return fmt.Errorf("%w: shares must be greater than 0", ErrInvalidHolding)
	}
	if !(h.Cost > 0) {
		return fmt.Errorf("%w: cost must be greater than 0", ErrInvalidHolding)
	}
	return nil
}

// DisplayName returns the holding's name or a generated placeholder.
func (h Holding) DisplayName() string {
	if h.Name != "" {
		return h.Name
	}
	return PlaceholderName(h.Code)
}

// PlaceholderName builds the fallback display name for a fund code.
func PlaceholderName(code string) string {
	return PlaceholderPrefix + code
}
