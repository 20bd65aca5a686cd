package database

import (
	"context"
	"encoding/json"

	"github.com/dermatologica/assistant/internal/domain/entities"
	"github.com/dermatologica/assistant/internal/domain/repositories"
	apperrors "github.com/dermatologica/assistant/pkg/errors"
)

// HistoryAdapter implements search history persistence over the KV store.
type HistoryAdapter struct {
	kv *KV
}

// NewHistoryAdapter creates a new history adapter.
func NewHistoryAdapter(kv *KV) repositories.HistoryRepository {
	return &HistoryAdapter{kv: kv}
}

// GetAll retrieves every history item.
func (a *HistoryAdapter) GetAll(ctx context.Context) ([]*entities.HistoryItem, error) {
	docs, err := a.kv.GetAll(ctx, PartitionHistory)
	if err != nil {
		return nil, err
	}

	items := make([]*entities.HistoryItem, 0, len(docs))
	for _, doc := range docs {
		var item entities.HistoryItem
		if err := json.Unmarshal(doc, &item); err != nil {
			return nil, apperrors.NewInternalError("failed to decode history item", err)
		}
		items = append(items, &item)
	}
	return items, nil
}

// Put upserts a history item by id.
func (a *HistoryAdapter) Put(ctx context.Context, item *entities.HistoryItem) error {
	if item == nil || item.ID == "" {
		return apperrors.NewValidationError("history item requires an id")
	}
	doc, err := json.Marshal(item)
	if err != nil {
		return apperrors.NewInternalError("failed to encode history item", err)
	}
	return a.kv.Put(ctx, PartitionHistory, item.ID, doc)
}

// Clear removes every history item.
func (a *HistoryAdapter) Clear(ctx context.Context) error {
	return a.kv.Clear(ctx, PartitionHistory)
}
