package services_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dermatologica/assistant/internal/application/services"
	"github.com/dermatologica/assistant/internal/domain/entities"
	"github.com/dermatologica/assistant/internal/domain/providers"
	apperrors "github.com/dermatologica/assistant/pkg/errors"
)

func TestAssembler_StripsCodeFences(t *testing.T) {
	stream := textStream("```json\n{\"summary\":\"x\",", "\"formulas\":[]}\n```")

	result, err := services.NewAssembler().Assemble(stream)

	require.NoError(t, err)
	assert.Equal(t, "x", result.Response.Summary)
	assert.Empty(t, result.Response.Formulas)
	assert.Empty(t, result.Sources)
}

func TestAssembler_AcceptsBarePayload(t *testing.T) {
	stream := textStream(`{"summary":"s","formulas":[{"name":"Urea Cream","ingredients":["Urea 10%"],"instructions":"Apply twice daily."}]}`)

	result, err := services.NewAssembler().Assemble(stream)

	require.NoError(t, err)
	require.Len(t, result.Response.Formulas, 1)
	assert.Equal(t, "Urea Cream", result.Response.Formulas[0].Name)
}

func TestAssembler_AssignsPositionalIDs(t *testing.T) {
	payload := `{"summary":"s","formulas":[` +
		`{"name":"A","ingredients":["x"],"instructions":"i"},` +
		`{"name":"B","ingredients":["y"],"instructions":"i"},` +
		`{"name":"C","ingredients":["z"],"instructions":"i"}]}`

	result, err := services.NewAssembler().Assemble(textStream(payload))

	require.NoError(t, err)
	require.Len(t, result.Response.Formulas, 3)
	seen := make(map[string]bool)
	for i, f := range result.Response.Formulas {
		assert.Equal(t, fmt.Sprintf("%d-%d", result.Stamp, i), f.ID)
		assert.False(t, seen[f.ID], "ids must be pairwise distinct")
		seen[f.ID] = true
	}
}

func TestAssembler_StampsAreNeverReused(t *testing.T) {
	payload := `{"summary":"s","formulas":[{"name":"A","ingredients":["x"],"instructions":"i"}]}`
	assembler := services.NewAssembler()

	first, err := assembler.Assemble(textStream(payload))
	require.NoError(t, err)
	second, err := assembler.Assemble(textStream(payload))
	require.NoError(t, err)

	assert.Greater(t, second.Stamp, first.Stamp)
	assert.NotEqual(t, first.Response.Formulas[0].ID, second.Response.Formulas[0].ID)
}

func TestAssembler_CollectsSourcesInArrivalOrder(t *testing.T) {
	stream := &fakeStream{chunks: []*providers.SuggestionChunk{
		{Sources: []entities.GroundingSource{{URI: "https://a", Title: "A"}}},
		{Text: `{"summary":"s",`},
		{
			Text:    `"formulas":[]}`,
			Sources: []entities.GroundingSource{{URI: "https://b", Title: "B"}, {URI: "https://a", Title: "A"}},
		},
	}}

	result, err := services.NewAssembler().Assemble(stream)

	require.NoError(t, err)
	// Appended as they arrived, duplicates included.
	require.Len(t, result.Sources, 3)
	assert.Equal(t, "https://a", result.Sources[0].URI)
	assert.Equal(t, "https://b", result.Sources[1].URI)
	assert.Equal(t, "https://a", result.Sources[2].URI)
}

func TestAssembler_EmptyPayload(t *testing.T) {
	for _, fragments := range [][]string{
		{},
		{"   \n"},
		{"```json\n", "```"},
	} {
		_, err := services.NewAssembler().Assemble(textStream(fragments...))
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeEmptyResponse))
	}
}

func TestAssembler_MalformedPayload(t *testing.T) {
	_, err := services.NewAssembler().Assemble(textStream(`{"summary": "x", "formulas": `))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeMalformedResponse))
}

func TestAssembler_SchemaViolationIsMalformed(t *testing.T) {
	// Valid JSON, wrong shape.
	_, err := services.NewAssembler().Assemble(textStream(`{"summary": 42, "formulas": []}`))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeMalformedResponse))
}

func TestAssembler_StreamFailureIsTransport(t *testing.T) {
	stream := &fakeStream{
		chunks: []*providers.SuggestionChunk{{Text: `{"summary":"x",`}},
		err:    errors.New("connection reset"),
	}

	result, err := services.NewAssembler().Assemble(stream)

	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeTransport))
	assert.False(t, apperrors.IsType(err, apperrors.ErrorTypeEmptyResponse))
}
