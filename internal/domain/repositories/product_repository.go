package repositories

import (
	"context"

	"github.com/dermatologica/assistant/internal/domain/entities"
)

// ProductRepository defines the interface for the product catalog partition
type ProductRepository interface {
	// GetAll retrieves every product
	GetAll(ctx context.Context) ([]*entities.Product, error)

	// Put upserts a product by id
	Put(ctx context.Context, product *entities.Product) error

	// Delete removes a product by id; deleting an absent id is not an error
	Delete(ctx context.Context, id string) error

	// Clear removes every product
	Clear(ctx context.Context) error
}
