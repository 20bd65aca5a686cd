package services

import (
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/dermatologica/assistant/internal/domain/entities"
	"github.com/dermatologica/assistant/internal/domain/providers"
	apperrors "github.com/dermatologica/assistant/pkg/errors"
)

// responseSchema describes the serialized document the suggestion backend
// is asked to produce. Formula ids are absent on the wire; they are
// assigned here and nowhere else.
const responseSchema = `{
	"type": "object",
	"required": ["summary", "formulas"],
	"properties": {
		"summary": {"type": "string"},
		"formulas": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name", "ingredients", "instructions"],
				"properties": {
					"name": {"type": "string"},
					"ingredients": {"type": "array", "items": {"type": "string"}},
					"instructions": {"type": "string"},
					"averageValue": {"type": "string"}
				}
			}
		}
	}
}`

var compiledResponseSchema = jsonschema.MustCompileString("suggestion-response.json", responseSchema)

// AssembledResult is a validated, identified suggestion response together
// with the citations collected while streaming it and the stamp its formula
// ids were minted from.
type AssembledResult struct {
	Response *entities.SuggestionResponse
	Sources  []entities.GroundingSource
	Stamp    int64
}

// Assembler reconstructs a structured result from an incremental suggestion
// stream.
type Assembler struct {
	clock func() time.Time
}

// NewAssembler creates an assembler using the wall clock.
func NewAssembler() *Assembler {
	return &Assembler{clock: time.Now}
}

type wireFormula struct {
	Name         string   `json:"name"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
	AverageValue string   `json:"averageValue"`
}

type wireResponse struct {
	Summary  string        `json:"summary"`
	Formulas []wireFormula `json:"formulas"`
}

// Assemble drains the stream to completion, concatenating text fragments
// and appending citation batches in arrival order with no de-duplication,
// then parses and validates the payload and assigns fresh formula ids.
// Failure kinds are distinguishable: a stream error surfaces as Transport,
// a blank payload as EmptyResponse and an unparseable or schema-invalid
// payload as MalformedResponse. Nothing is persisted here.
func (a *Assembler) Assemble(stream providers.SuggestionStream) (*AssembledResult, error) {
	var buf strings.Builder
	var sources []entities.GroundingSource

	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewTransportError("suggestion stream failed", err)
		}
		buf.WriteString(chunk.Text)
		sources = append(sources, chunk.Sources...)
	}

	payload := stripCodeFences(buf.String())
	if payload == "" {
		return nil, apperrors.NewEmptyResponseError("suggestion stream produced no content")
	}

	var doc interface{}
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return nil, apperrors.NewMalformedResponseError("suggestion payload is not valid JSON", err)
	}
	if err := compiledResponseSchema.Validate(doc); err != nil {
		return nil, apperrors.NewMalformedResponseError("suggestion payload does not match the expected document", err)
	}

	var wire wireResponse
	if err := json.Unmarshal([]byte(payload), &wire); err != nil {
		return nil, apperrors.NewMalformedResponseError("suggestion payload could not be decoded", err)
	}

	stamp := batchStamp(a.clock())
	response := &entities.SuggestionResponse{Summary: wire.Summary}
	for i, wf := range wire.Formulas {
		response.Formulas = append(response.Formulas, &entities.Formula{
			ID:           recordID(stamp, i),
			Name:         wf.Name,
			Ingredients:  wf.Ingredients,
			Instructions: wf.Instructions,
			AverageValue: wf.AverageValue,
		})
	}

	return &AssembledResult{
		Response: response,
		Sources:  sources,
		Stamp:    stamp,
	}, nil
}

// stripCodeFences removes optional leading/trailing markdown fences. The
// payload is accepted with or without them.
func stripCodeFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
	}
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}
