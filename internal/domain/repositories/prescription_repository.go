package repositories

import (
	"context"

	"github.com/dermatologica/assistant/internal/domain/entities"
)

// PrescriptionRepository defines the interface for saved prescription scans
type PrescriptionRepository interface {
	// GetAll retrieves every saved prescription
	GetAll(ctx context.Context) ([]*entities.SavedPrescription, error)

	// Put upserts a prescription by id
	Put(ctx context.Context, item *entities.SavedPrescription) error

	// Delete removes a prescription by id; deleting an absent id is not an error
	Delete(ctx context.Context, id string) error

	// Clear removes every saved prescription
	Clear(ctx context.Context) error
}
