package interfaces

import (
	"context"

	"github.com/bobmcallan/fundwatch/internal/models"
)

// HoldingStore persists the ordered list of holdings
type HoldingStore interface {
	Load(ctx context.Context) ([]models.Holding, error)
	Save(ctx context.Context, holdings []models.Holding) error

	// Upsert inserts the holding or updates the one with the same code.
	// The name is only replaced when the new holding carries one.
	Upsert(ctx context.Context, h models.Holding) error

	// Delete removes the holding with the given code. A missing code is not an error.
	Delete(ctx context.Context, code string) error
}
