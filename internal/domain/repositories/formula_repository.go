package repositories

import (
	"context"

	"github.com/dermatologica/assistant/internal/domain/entities"
)

// SavedFormulaRepository defines the interface for the saved-formulas partition
type SavedFormulaRepository interface {
	// GetAll retrieves every saved formula
	GetAll(ctx context.Context) ([]*entities.Formula, error)

	// Put upserts a formula by id
	Put(ctx context.Context, formula *entities.Formula) error

	// Delete removes a formula by id; deleting an absent id is not an error
	Delete(ctx context.Context, id string) error

	// Clear removes every saved formula
	Clear(ctx context.Context) error
}
