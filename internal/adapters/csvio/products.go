// Package csvio converts the product catalog to and from CSV text.
// Import accepts a header row with at least a name column; export writes
// name,description,category with RFC-4180 quoting.
package csvio

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/dermatologica/assistant/internal/domain/entities"
	apperrors "github.com/dermatologica/assistant/pkg/errors"
)

// ParseProducts reads CSV text into product candidates. The header row must
// contain a name column; description and category columns are optional.
// Rows with an empty name are skipped.
func ParseProducts(r io.Reader) ([]entities.ProductInput, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.NewValidationError("csv is empty")
	}
	if err != nil {
		return nil, apperrors.NewValidationError("failed to read csv header")
	}

	nameIdx, descIdx, catIdx := -1, -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "name":
			nameIdx = i
		case "description":
			descIdx = i
		case "category":
			catIdx = i
		}
	}
	if nameIdx < 0 {
		return nil, apperrors.NewValidationError("csv header is missing a name column")
	}

	var inputs []entities.ProductInput
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewValidationError("failed to parse csv row")
		}

		input := entities.ProductInput{Name: strings.TrimSpace(field(record, nameIdx))}
		if input.Name == "" {
			continue
		}
		input.Description = strings.TrimSpace(field(record, descIdx))
		input.Category = strings.TrimSpace(field(record, catIdx))
		inputs = append(inputs, input)
	}
	return inputs, nil
}

// WriteProducts writes the catalog as CSV with a name,description,category
// header. Fields containing commas, quotes or newlines are quoted with
// internal quotes doubled.
func WriteProducts(w io.Writer, products []*entities.Product) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"name", "description", "category"}); err != nil {
		return apperrors.NewInternalError("failed to write csv header", err)
	}
	for _, p := range products {
		if err := writer.Write([]string{p.Name, p.Description, p.Category}); err != nil {
			return apperrors.NewInternalError("failed to write csv row", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperrors.NewInternalError("failed to flush csv", err)
	}
	return nil
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}
