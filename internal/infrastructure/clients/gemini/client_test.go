package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dermatologica/assistant/internal/domain/entities"
	"github.com/dermatologica/assistant/internal/domain/providers"
	"github.com/dermatologica/assistant/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&config.GeminiConfig{APIKey: "test-key", RateLimitRPM: -1})
	require.NoError(t, err)
	client.baseURL = server.URL
	return client
}

func sseEvent(t *testing.T, candidate generateCandidate) string {
	t.Helper()
	data, err := json.Marshal(generateResponse{Candidates: []generateCandidate{candidate}})
	require.NoError(t, err)
	return fmt.Sprintf("data: %s\n\n", data)
}

func textCandidate(text string) generateCandidate {
	return generateCandidate{Content: &generateContent{Parts: []generatePart{{Text: text}}}}
}

func drain(t *testing.T, stream providers.SuggestionStream) []*providers.SuggestionChunk {
	t.Helper()
	var chunks []*providers.SuggestionChunk
	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			return chunks
		}
		require.NoError(t, err)
		chunks = append(chunks, chunk)
	}
}

func TestStreamSuggestions_YieldsChunksInArrivalOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.Contains(t, r.URL.Path, ":streamGenerateContent")
		assert.Equal(t, "sse", r.URL.Query().Get("alt"))

		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, sseEvent(t, textCandidate(`{"summary":`)))
		io.WriteString(w, sseEvent(t, textCandidate(`"x","formulas":[]}`)))
		io.WriteString(w, "data: [DONE]\n\n")
	})

	stream, err := client.StreamSuggestions(context.Background(), "rosacea", nil)
	require.NoError(t, err)

	chunks := drain(t, stream)
	require.Len(t, chunks, 2)
	assert.Equal(t, `{"summary":`, chunks[0].Text)
	assert.Equal(t, `"x","formulas":[]}`, chunks[1].Text)

	// A drained stream stays terminated.
	_, err = stream.Recv()
	assert.Equal(t, io.EOF, err)
}

func TestStreamSuggestions_SurfacesGroundingSourcesOnce(t *testing.T) {
	grounded := textCandidate("part one")
	grounded.GroundingMetadata = &groundingMetadata{GroundingChunks: []groundingChunk{
		{Web: &groundingWeb{URI: "https://example.org/a", Title: "A"}},
		{Web: &groundingWeb{URI: "https://example.org/no-title"}},
		{Web: nil},
	}}
	groundedAgain := textCandidate("part two")
	groundedAgain.GroundingMetadata = grounded.GroundingMetadata

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, sseEvent(t, grounded))
		io.WriteString(w, sseEvent(t, groundedAgain))
	})

	stream, err := client.StreamSuggestions(context.Background(), "rosacea", nil)
	require.NoError(t, err)

	chunks := drain(t, stream)
	require.Len(t, chunks, 2)
	assert.Equal(t, []entities.GroundingSource{{URI: "https://example.org/a", Title: "A"}}, chunks[0].Sources)
	assert.Empty(t, chunks[1].Sources, "sources are reported once per stream")
}

func TestStreamSuggestions_IncludesProductContext(t *testing.T) {
	prompts := make(chan string, 1)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		prompts <- payload.Contents[0].Parts[0].Text
		io.WriteString(w, "data: [DONE]\n\n")
	})

	products := []*entities.Product{{Name: "Lanette Cream", Category: "base"}}
	stream, err := client.StreamSuggestions(context.Background(), "xerosis", products)
	require.NoError(t, err)
	drain(t, stream)

	prompt := <-prompts
	assert.Contains(t, prompt, "xerosis")
	assert.Contains(t, prompt, "Lanette Cream")
}

func TestStreamSuggestions_NonSuccessStatusFailsUpfront(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	_, err := client.StreamSuggestions(context.Background(), "rosacea", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestGenerateIcon_ReturnsDataURL(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, ":generateContent")
		response := generateResponse{Candidates: []generateCandidate{{
			Content: &generateContent{Parts: []generatePart{
				{InlineData: &inlineData{MimeType: "image/png", Data: "aWNvbg=="}},
			}},
		}}}
		require.NoError(t, json.NewEncoder(w).Encode(response))
	})

	dataURL, err := client.GenerateIcon(context.Background(), "Urea Cream")

	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,aWNvbg==", dataURL)
}

func TestGenerateIcon_MissingImageData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		response := generateResponse{Candidates: []generateCandidate{textCandidate("no image here")}}
		require.NoError(t, json.NewEncoder(w).Encode(response))
	})

	_, err := client.generateIconOnce(context.Background(), []byte(`{}`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing image data")
}

func TestGenerateIcon_NonSuccessStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	})

	_, err := client.generateIconOnce(context.Background(), []byte(`{}`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestClose_StopsRateLimiterRefill(t *testing.T) {
	bucket := newTokenBucketWithRate(60, 1)
	require.NoError(t, bucket.Wait(context.Background()))

	bucket.Stop()
	bucket.Stop()

	// The burst token is spent and refill has stopped, so waiting can only
	// end with the context.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.Error(t, bucket.Wait(ctx))
}

func TestClose_ToleratesDisabledLimiter(t *testing.T) {
	client, err := NewClient(&config.GeminiConfig{APIKey: "test-key", RateLimitRPM: -1})
	require.NoError(t, err)
	client.Close()
	client.Close()
}
