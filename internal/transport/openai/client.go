package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/averene/folio/internal/domain"
	"github.com/averene/folio/internal/metrics"
)

// maxImageBytes caps how much of a remote asset is downloaded for captioning.
const maxImageBytes = 20 << 20

const (
	opEmbed   = "embed"
	opCaption = "caption"
)

// Client is an embedding and captioning provider using the OpenAI-compatible API.
type Client struct {
	client        *openai.Client
	httpClient    *http.Client
	model         openai.EmbeddingModel
	captionModel  string
	dimensions    int
	maxInputChars int
	logger        *zap.Logger
}

// Config holds the provider settings.
type Config struct {
	APIKey        string
	BaseURL       string
	Model         string
	CaptionModel  string
	Dimensions    int
	MaxInputChars int
	Logger        *zap.Logger
}

// NewClient creates an OpenAI-compatible provider client.
func NewClient(cfg *Config) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Client{
		client:        openai.NewClientWithConfig(clientCfg),
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		model:         openai.EmbeddingModel(cfg.Model),
		captionModel:  cfg.CaptionModel,
		dimensions:    cfg.Dimensions,
		maxInputChars: cfg.MaxInputChars,
		logger:        cfg.Logger,
	}
}

// EmbedText implements domain.Embedder. Oversized input is truncated, not rejected.
func (c *Client) EmbedText(ctx context.Context, text string) ([]float32, error) {
	text = c.truncate(text)

	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          c.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if c.dimensions > 0 {
		req.Dimensions = c.dimensions
	}

	start := time.Now()
	resp, err := c.client.CreateEmbeddings(ctx, req)
	duration := time.Since(start)

	model := string(c.model)
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(opEmbed, model, "error").Inc()
		metrics.ProviderErrorsTotal.WithLabelValues(opEmbed, model, "api_error").Inc()
		return nil, parseAPIError("embedding", err)
	}

	if len(resp.Data) == 0 {
		metrics.ProviderRequestsTotal.WithLabelValues(opEmbed, model, "error").Inc()
		metrics.ProviderErrorsTotal.WithLabelValues(opEmbed, model, "empty_response").Inc()
		return nil, fmt.Errorf("empty embedding response: %w", domain.ErrProviderError)
	}

	metrics.ProviderRequestsTotal.WithLabelValues(opEmbed, model, "success").Inc()
	metrics.ProviderRequestDuration.WithLabelValues(opEmbed, model).Observe(duration.Seconds())

	if resp.Usage.TotalTokens > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(model, "prompt").
			Add(float64(resp.Usage.PromptTokens))
		metrics.EmbeddingTokensTotal.WithLabelValues(model, "total").
			Add(float64(resp.Usage.TotalTokens))
	}

	return resp.Data[0].Embedding, nil
}

// CaptionImage implements domain.Captioner. The asset is downloaded and passed
// inline as a data URL, so private or signed URLs the provider cannot reach
// still work.
func (c *Client) CaptionImage(ctx context.Context, url string) (string, error) {
	dataURL, err := c.fetchAsDataURL(ctx, url)
	if err != nil {
		metrics.ProviderErrorsTotal.WithLabelValues(opCaption, c.captionModel, "fetch_error").Inc()
		return "", fmt.Errorf("fetch image: %w: %w", err, domain.ErrProviderError)
	}

	req := openai.ChatCompletionRequest{
		Model:       c.captionModel,
		MaxTokens:   80,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You create short, descriptive image captions.",
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: "Provide a concise, descriptive caption for this image suitable for search.",
					},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(opCaption, c.captionModel, "error").Inc()
		metrics.ProviderErrorsTotal.WithLabelValues(opCaption, c.captionModel, "api_error").Inc()
		return "", parseAPIError("caption", err)
	}

	metrics.ProviderRequestsTotal.WithLabelValues(opCaption, c.captionModel, "success").Inc()
	metrics.ProviderRequestDuration.WithLabelValues(opCaption, c.captionModel).Observe(duration.Seconds())

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// truncate trims text to the configured rune budget.
func (c *Client) truncate(text string) string {
	if c.maxInputChars <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= c.maxInputChars {
		return text
	}
	return string(runes[:c.maxInputChars])
}

func (c *Client) fetchAsDataURL(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", errors.New("empty response body")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || !strings.HasPrefix(contentType, "image/") {
		contentType = http.DetectContentType(data)
	}

	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors wrap domain.ErrProviderError for uniform handling upstream.
func parseAPIError(op string, err error) error {
	wrap := domain.ErrProviderError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("%s API error %d: %s: %w", op, reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("%s API error %d: %s: %w", op, reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s API error %d: %s: %w", op, apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("%s request failed: %w", op, wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
