package database

import (
	"context"
	"encoding/json"

	"github.com/dermatologica/assistant/internal/domain/entities"
	"github.com/dermatologica/assistant/internal/domain/repositories"
	apperrors "github.com/dermatologica/assistant/pkg/errors"
)

// ProductAdapter implements product catalog persistence over the KV store.
type ProductAdapter struct {
	kv *KV
}

// NewProductAdapter creates a new product adapter.
func NewProductAdapter(kv *KV) repositories.ProductRepository {
	return &ProductAdapter{kv: kv}
}

// GetAll retrieves every product.
func (a *ProductAdapter) GetAll(ctx context.Context) ([]*entities.Product, error) {
	docs, err := a.kv.GetAll(ctx, PartitionProducts)
	if err != nil {
		return nil, err
	}

	products := make([]*entities.Product, 0, len(docs))
	for _, doc := range docs {
		var p entities.Product
		if err := json.Unmarshal(doc, &p); err != nil {
			return nil, apperrors.NewInternalError("failed to decode product", err)
		}
		products = append(products, &p)
	}
	return products, nil
}

// Put upserts a product by id.
func (a *ProductAdapter) Put(ctx context.Context, product *entities.Product) error {
	if product == nil || product.ID == "" {
		return apperrors.NewValidationError("product requires an id")
	}
	doc, err := json.Marshal(product)
	if err != nil {
		return apperrors.NewInternalError("failed to encode product", err)
	}
	return a.kv.Put(ctx, PartitionProducts, product.ID, doc)
}

// Delete removes a product by id.
func (a *ProductAdapter) Delete(ctx context.Context, id string) error {
	return a.kv.Delete(ctx, PartitionProducts, id)
}

// Clear removes every product.
func (a *ProductAdapter) Clear(ctx context.Context) error {
	return a.kv.Clear(ctx, PartitionProducts)
}
