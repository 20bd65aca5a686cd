package database

import (
	"context"
	"encoding/json"

	"github.com/dermatologica/assistant/internal/domain/entities"
	"github.com/dermatologica/assistant/internal/domain/repositories"
	apperrors "github.com/dermatologica/assistant/pkg/errors"
)

// PrescriptionAdapter implements saved prescription persistence over the KV store.
type PrescriptionAdapter struct {
	kv *KV
}

// NewPrescriptionAdapter creates a new prescription adapter.
func NewPrescriptionAdapter(kv *KV) repositories.PrescriptionRepository {
	return &PrescriptionAdapter{kv: kv}
}

// GetAll retrieves every saved prescription.
func (a *PrescriptionAdapter) GetAll(ctx context.Context) ([]*entities.SavedPrescription, error) {
	docs, err := a.kv.GetAll(ctx, PartitionSavedPrescriptions)
	if err != nil {
		return nil, err
	}

	items := make([]*entities.SavedPrescription, 0, len(docs))
	for _, doc := range docs {
		var item entities.SavedPrescription
		if err := json.Unmarshal(doc, &item); err != nil {
			return nil, apperrors.NewInternalError("failed to decode saved prescription", err)
		}
		items = append(items, &item)
	}
	return items, nil
}

// Put upserts a prescription by id.
func (a *PrescriptionAdapter) Put(ctx context.Context, item *entities.SavedPrescription) error {
	if item == nil || item.ID == "" {
		return apperrors.NewValidationError("prescription requires an id")
	}
	doc, err := json.Marshal(item)
	if err != nil {
		return apperrors.NewInternalError("failed to encode prescription", err)
	}
	return a.kv.Put(ctx, PartitionSavedPrescriptions, item.ID, doc)
}

// Delete removes a prescription by id.
func (a *PrescriptionAdapter) Delete(ctx context.Context, id string) error {
	return a.kv.Delete(ctx, PartitionSavedPrescriptions, id)
}

// Clear removes every saved prescription.
func (a *PrescriptionAdapter) Clear(ctx context.Context) error {
	return a.kv.Clear(ctx, PartitionSavedPrescriptions)
}
