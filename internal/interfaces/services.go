package interfaces

import (
	"context"

	"github.com/bobmcallan/fundwatch/internal/models"
)

// QuoteService resolves the quote to trust for a fund code
type QuoteService interface {
	// Resolve applies the fallback policy for the given session state.
	// A nil result means no provider could supply a quote.
	Resolve(ctx context.Context, code string, state models.SessionState) *models.Quote
}

// ValuationService values a set of holdings
type ValuationService interface {
	Valuate(ctx context.Context, holdings []models.Holding) (*models.Valuation, error)
}
