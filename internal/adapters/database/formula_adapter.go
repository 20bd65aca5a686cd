package database

import (
	"context"
	"encoding/json"

	"github.com/dermatologica/assistant/internal/domain/entities"
	"github.com/dermatologica/assistant/internal/domain/repositories"
	apperrors "github.com/dermatologica/assistant/pkg/errors"
)

// SavedFormulaAdapter implements saved-formula persistence over the KV store.
type SavedFormulaAdapter struct {
	kv *KV
}

// NewSavedFormulaAdapter creates a new saved-formula adapter.
func NewSavedFormulaAdapter(kv *KV) repositories.SavedFormulaRepository {
	return &SavedFormulaAdapter{kv: kv}
}

// GetAll retrieves every saved formula.
func (a *SavedFormulaAdapter) GetAll(ctx context.Context) ([]*entities.Formula, error) {
	docs, err := a.kv.GetAll(ctx, PartitionSavedFormulas)
	if err != nil {
		return nil, err
	}

	formulas := make([]*entities.Formula, 0, len(docs))
	for _, doc := range docs {
		var f entities.Formula
		if err := json.Unmarshal(doc, &f); err != nil {
			return nil, apperrors.NewInternalError("failed to decode saved formula", err)
		}
		formulas = append(formulas, &f)
	}
	return formulas, nil
}

// Put upserts a formula by id.
func (a *SavedFormulaAdapter) Put(ctx context.Context, formula *entities.Formula) error {
	if formula == nil || formula.ID == "" {
		return apperrors.NewValidationError("formula requires an id")
	}
	doc, err := json.Marshal(formula)
	if err != nil {
		return apperrors.NewInternalError("failed to encode formula", err)
	}
	return a.kv.Put(ctx, PartitionSavedFormulas, formula.ID, doc)
}

// Delete removes a formula by id.
func (a *SavedFormulaAdapter) Delete(ctx context.Context, id string) error {
	return a.kv.Delete(ctx, PartitionSavedFormulas, id)
}

// Clear removes every saved formula.
func (a *SavedFormulaAdapter) Clear(ctx context.Context) error {
	return a.kv.Clear(ctx, PartitionSavedFormulas)
}
