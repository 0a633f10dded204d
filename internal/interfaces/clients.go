// Package interfaces defines service contracts for fundwatch
package interfaces

import (
	"context"

	"github.com/bobmcallan/fundwatch/internal/models"
)

// QuoteProvider fetches one provider's quote for a fund code.
// Any failure is returned as an error; callers treat it as "unavailable".
type QuoteProvider interface {
	// Source reports which role the provider plays in the fallback policy
	Source() models.Source

	// GetQuote fetches and normalizes a single quote
	GetQuote(ctx context.Context, code string) (*models.Quote, error)
}
