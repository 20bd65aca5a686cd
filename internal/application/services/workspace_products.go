package services

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dermatologica/assistant/internal/adapters/csvio"
	"github.com/dermatologica/assistant/internal/domain/entities"
	apperrors "github.com/dermatologica/assistant/pkg/errors"
)

// Products returns independent copies of the catalog, ordered by name.
func (s *WorkspaceService) Products() []*entities.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneProducts(s.productList)
}

// SaveProduct upserts a product. A product without an id is a new manual
// entry and gets one minted here; ids stay stable across edits.
func (s *WorkspaceService) SaveProduct(ctx context.Context, product *entities.Product) error {
	if product == nil || strings.TrimSpace(product.Name) == "" {
		return apperrors.NewValidationError("product requires a name")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record := *product
	if record.ID == "" {
		record.ID = recordID(batchStamp(time.Now()), 0)
	}

	if err := s.productRepo.Put(ctx, &record); err != nil {
		return err
	}

	replaced := false
	for i, existing := range s.productList {
		if existing.ID == record.ID {
			s.productList[i] = &record
			replaced = true
			break
		}
	}
	if !replaced {
		s.productList = append([]*entities.Product{&record}, s.productList...)
	}
	sortProducts(s.productList)
	return nil
}

// DeleteProduct removes a product by id.
func (s *WorkspaceService) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	for i, existing := range s.productList {
		if existing.ID == id {
			s.productList = append(s.productList[:i], s.productList[i+1:]...)
			break
		}
	}
	return nil
}

// ClearProducts removes the whole catalog.
func (s *WorkspaceService) ClearProducts(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.productRepo.Clear(ctx); err != nil {
		return err
	}
	s.productList = nil
	return nil
}

// ImportReport summarizes a batch import for user feedback.
type ImportReport struct {
	Added   int
	Skipped int
}

// ImportProducts upserts a batch of candidates in input order, skipping any
// whose lowercased name already exists in the catalog or earlier in the
// same batch. Accepted candidates get ids of the form {batchStamp}-{index}
// where index is the candidate's position in the input. One persistence
// write is issued per accepted product.
func (s *WorkspaceService) ImportProducts(ctx context.Context, inputs []entities.ProductInput) (ImportReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existingNames := make(map[string]struct{}, len(s.productList))
	for _, p := range s.productList {
		existingNames[strings.ToLower(p.Name)] = struct{}{}
	}

	var report ImportReport
	stamp := batchStamp(time.Now())
	for index, input := range inputs {
		lower := strings.ToLower(input.Name)
		if _, exists := existingNames[lower]; exists {
			report.Skipped++
			continue
		}
		existingNames[lower] = struct{}{}

		product := &entities.Product{
			ID:          recordID(stamp, index),
			Name:        input.Name,
			Description: input.Description,
			Category:    input.Category,
		}
		if err := s.productRepo.Put(ctx, product); err != nil {
			return report, err
		}
		s.productList = append(s.productList, product)
		report.Added++
	}
	sortProducts(s.productList)

	log.Info().Int("added", report.Added).Int("skipped", report.Skipped).Msg("product import finished")
	return report, nil
}

// ImportProductsCSV parses CSV text and imports the records it holds.
func (s *WorkspaceService) ImportProductsCSV(ctx context.Context, r io.Reader) (ImportReport, error) {
	inputs, err := csvio.ParseProducts(r)
	if err != nil {
		return ImportReport{}, err
	}
	return s.ImportProducts(ctx, inputs)
}

// ExportProductsCSV writes the catalog as CSV.
func (s *WorkspaceService) ExportProductsCSV(w io.Writer) error {
	s.mu.Lock()
	products := cloneProducts(s.productList)
	s.mu.Unlock()

	if len(products) == 0 {
		return apperrors.NewNotFoundError("there are no products to export")
	}
	return csvio.WriteProducts(w, products)
}
