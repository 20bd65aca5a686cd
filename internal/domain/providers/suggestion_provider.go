package providers

import (
	"context"

	"github.com/dermatologica/assistant/internal/domain/entities"
)

// SuggestionChunk is one event of a streamed suggestion call. A chunk may
// carry a text fragment, a batch of citations, or both. Fragment boundaries
// carry no meaning: concatenating every Text in arrival order yields the
// full serialized payload.
type SuggestionChunk struct {
	Text    string
	Sources []entities.GroundingSource
}

// SuggestionStream is a single-pass, non-restartable event sequence.
// Recv returns io.EOF when the generation completes normally; any other
// error terminates the stream.
type SuggestionStream interface {
	Recv() (*SuggestionChunk, error)
}

// SuggestionProvider defines the interface for the generative suggestion backend
type SuggestionProvider interface {
	// StreamSuggestions starts a streamed suggestion call for a condition,
	// optionally biased toward the given stock products.
	StreamSuggestions(ctx context.Context, condition string, products []*entities.Product) (SuggestionStream, error)
}
