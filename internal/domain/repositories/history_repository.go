package repositories

import (
	"context"

	"github.com/dermatologica/assistant/internal/domain/entities"
)

// HistoryRepository defines the interface for search history persistence
type HistoryRepository interface {
	// GetAll retrieves every history item; ordering is storage-defined and
	// callers sort explicitly
	GetAll(ctx context.Context) ([]*entities.HistoryItem, error)

	// Put upserts a history item by id
	Put(ctx context.Context, item *entities.HistoryItem) error

	// Clear removes every history item
	Clear(ctx context.Context) error
}
