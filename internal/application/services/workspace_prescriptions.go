package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dermatologica/assistant/internal/domain/entities"
	apperrors "github.com/dermatologica/assistant/pkg/errors"
)

// Prescriptions returns every saved prescription scan, most recent first.
func (s *WorkspaceService) Prescriptions(ctx context.Context) ([]*entities.SavedPrescription, error) {
	items, err := s.prescriptionRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Timestamp > items[j].Timestamp
	})
	return items, nil
}

// SavePrescription persists a prescription scan unless an identical one
// (same doctor, patient, date and prescribed items) is already saved.
func (s *WorkspaceService) SavePrescription(ctx context.Context, data *entities.PrescriptionData, imagePreviewURL string) (*entities.SavedPrescription, error) {
	if data == nil {
		return nil, apperrors.NewValidationError("prescription data is required")
	}

	existing, err := s.prescriptionRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	fingerprint := data.Fingerprint()
	for _, item := range existing {
		if item.Data != nil && item.Data.Fingerprint() == fingerprint {
			return nil, apperrors.NewConflictError("this prescription is already saved")
		}
	}

	item := &entities.SavedPrescription{
		ID:              uuid.NewString(),
		Timestamp:       time.Now().UnixMilli(),
		Data:            data,
		ImagePreviewURL: imagePreviewURL,
	}
	if err := s.prescriptionRepo.Put(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// DeletePrescription removes a saved prescription by id.
func (s *WorkspaceService) DeletePrescription(ctx context.Context, id string) error {
	return s.prescriptionRepo.Delete(ctx, id)
}

// ClearPrescriptions removes every saved prescription.
func (s *WorkspaceService) ClearPrescriptions(ctx context.Context) error {
	return s.prescriptionRepo.Clear(ctx)
}
