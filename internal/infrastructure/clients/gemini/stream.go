package gemini

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dermatologica/assistant/internal/domain/entities"
	"github.com/dermatologica/assistant/internal/domain/providers"
)

// StreamSuggestions starts a streamed suggestion call. The returned stream
// is single-pass: Recv yields chunks in arrival order and io.EOF on normal
// completion. The caller owns draining it; abandoning the context aborts
// the underlying request.
func (c *Client) StreamSuggestions(ctx context.Context, condition string, products []*entities.Product) (providers.SuggestionStream, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			recordRequestMetric(ctx, c.textModel, 0, 0, err)
			return nil, err
		}
	}

	payload := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]string{{"text": buildSuggestionPrompt(condition, products)}}},
		},
		"tools": []map[string]interface{}{
			{"google_search": map[string]interface{}{}},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", c.baseURL, c.textModel)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordRequestMetric(ctx, c.textModel, 0, time.Since(start), err)
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		err := fmt.Errorf("gemini request failed with status %d", resp.StatusCode)
		recordRequestMetric(ctx, c.textModel, resp.StatusCode, time.Since(start), err)
		return nil, err
	}

	recordRequestMetric(ctx, c.textModel, resp.StatusCode, time.Since(start), nil)
	return &suggestionStream{
		body:    resp.Body,
		scanner: newSSEScanner(resp.Body),
	}, nil
}

// suggestionStream adapts the server-sent-event wire format to the
// SuggestionStream port. Grounding sources are surfaced once, from the
// first event that carries them.
type suggestionStream struct {
	body        io.ReadCloser
	scanner     *bufio.Scanner
	sourcesSent bool
	done        bool
}

func newSSEScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return scanner
}

// Recv returns the next chunk, io.EOF on normal completion, or the
// transport error that terminated the stream.
func (s *suggestionStream) Recv() (*providers.SuggestionChunk, error) {
	if s.done {
		return nil, io.EOF
	}

	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" || data == "[DONE]" {
			continue
		}

		var event generateResponse
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			s.close()
			return nil, fmt.Errorf("malformed stream event: %w", err)
		}

		chunk := s.chunkFromEvent(&event)
		if chunk != nil {
			return chunk, nil
		}
	}

	if err := s.scanner.Err(); err != nil {
		s.close()
		return nil, err
	}

	s.close()
	return nil, io.EOF
}

func (s *suggestionStream) chunkFromEvent(event *generateResponse) *providers.SuggestionChunk {
	if len(event.Candidates) == 0 {
		return nil
	}
	candidate := event.Candidates[0]

	chunk := &providers.SuggestionChunk{}
	if !s.sourcesSent && candidate.GroundingMetadata != nil {
		for _, gc := range candidate.GroundingMetadata.GroundingChunks {
			if gc.Web == nil || gc.Web.URI == "" || gc.Web.Title == "" {
				continue
			}
			chunk.Sources = append(chunk.Sources, entities.GroundingSource{
				URI:   gc.Web.URI,
				Title: gc.Web.Title,
			})
		}
		if len(chunk.Sources) > 0 {
			s.sourcesSent = true
		}
	}

	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			chunk.Text += part.Text
		}
	}

	if chunk.Text == "" && len(chunk.Sources) == 0 {
		return nil
	}
	return chunk
}

func (s *suggestionStream) close() {
	if !s.done {
		s.done = true
		s.body.Close()
	}
}
