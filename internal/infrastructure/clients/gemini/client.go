package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dermatologica/assistant/pkg/config"
	"github.com/dermatologica/assistant/pkg/retry"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client implements the Gemini suggestion and icon providers over the REST
// API: streamGenerateContent (SSE) for formula suggestions and a single
// image-modality generateContent call per icon.
type Client struct {
	apiKey     string
	textModel  string
	imageModel string
	baseURL    string
	httpClient *http.Client
	limiter    *tokenBucket
}

// NewClient creates a new Gemini client.
func NewClient(cfg *config.GeminiConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	textModel := cfg.TextModel
	if textModel == "" {
		textModel = "gemini-2.5-flash"
	}
	imageModel := cfg.ImageModel
	if imageModel == "" {
		imageModel = "gemini-2.5-flash-image"
	}

	return &Client{
		apiKey:     cfg.APIKey,
		textModel:  textModel,
		imageModel: imageModel,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		limiter: newTokenBucket(cfg.RateLimitRPM, cfg.RateLimitBurst),
	}, nil
}

// Close releases the rate limiter's refill goroutine. The client must not
// be used after Close.
func (c *Client) Close() {
	if c.limiter != nil {
		c.limiter.Stop()
	}
}

type generatePart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type groundingWeb struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

type groundingChunk struct {
	Web *groundingWeb `json:"web"`
}

type groundingMetadata struct {
	GroundingChunks []groundingChunk `json:"groundingChunks"`
}

type generateCandidate struct {
	Content           *generateContent   `json:"content"`
	GroundingMetadata *groundingMetadata `json:"groundingMetadata"`
}

type generateResponse struct {
	Candidates []generateCandidate `json:"candidates"`
}

// GenerateIcon returns a data URL for a minimalist icon representing the
// named formula. Transient failures are retried inside this single logical
// request; the caller sees exactly one outcome.
func (c *Client) GenerateIcon(ctx context.Context, formulaName string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			recordRequestMetric(ctx, c.imageModel, 0, 0, err)
			return "", err
		}
	}

	payload := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]string{{"text": buildIconPrompt(formulaName)}}},
		},
		"generationConfig": map[string]interface{}{
			"responseModalities": []string{"IMAGE"},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	var dataURL string
	err = retry.Do(ctx, retry.DefaultConfig(), func() error {
		var attemptErr error
		dataURL, attemptErr = c.generateIconOnce(ctx, body)
		return attemptErr
	})
	if err != nil {
		return "", err
	}
	return dataURL, nil
}

func (c *Client) generateIconOnce(ctx context.Context, body []byte) (string, error) {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.imageModel)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordRequestMetric(ctx, c.imageModel, 0, time.Since(start), err)
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("gemini request failed with status %d", resp.StatusCode)
		recordRequestMetric(ctx, c.imageModel, resp.StatusCode, time.Since(start), err)
		return "", err
	}

	var envelope generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		recordRequestMetric(ctx, c.imageModel, resp.StatusCode, time.Since(start), err)
		return "", err
	}

	for _, candidate := range envelope.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				mime := part.InlineData.MimeType
				if mime == "" {
					mime = "image/png"
				}
				recordRequestMetric(ctx, c.imageModel, resp.StatusCode, time.Since(start), nil)
				return fmt.Sprintf("data:%s;base64,%s", mime, part.InlineData.Data), nil
			}
		}
	}

	err = errors.New("gemini response missing image data")
	recordRequestMetric(ctx, c.imageModel, resp.StatusCode, time.Since(start), err)
	return "", err
}

func newTokenBucket(rpm int, burst int) *tokenBucket {
	if rpm == 0 {
		rpm = 60
	}
	if rpm < 0 {
		return nil
	}
	if burst <= 0 {
		burst = 5
	}
	return newTokenBucketWithRate(rpm, burst)
}

type tokenBucket struct {
	tokens   chan struct{}
	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
}

func newTokenBucketWithRate(rpm int, burst int) *tokenBucket {
	bucket := &tokenBucket{
		tokens: make(chan struct{}, burst),
		done:   make(chan struct{}),
	}

	for i := 0; i < burst; i++ {
		bucket.tokens <- struct{}{}
	}

	interval := time.Minute / time.Duration(rpm)
	if interval <= 0 {
		interval = time.Millisecond
	}

	bucket.ticker = time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-bucket.done:
				return
			case <-bucket.ticker.C:
				select {
				case bucket.tokens <- struct{}{}:
				default:
				}
			}
		}
	}()

	return bucket
}

func (b *tokenBucket) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.tokens:
		return nil
	}
}

// Stop ends the refill goroutine and releases its ticker. Idempotent.
func (b *tokenBucket) Stop() {
	b.stopOnce.Do(func() {
		b.ticker.Stop()
		close(b.done)
	})
}
