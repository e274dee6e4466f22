package perplexity

import (
	"bytes"
	"context"
	"crimson-crm-be/pkg/llm"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.perplexity.ai"
	DefaultModel   = "sonar-pro"
	DefaultTimeout = 15 * time.Second
)

// Known placeholder credentials shipped in sample configs.
const (
	placeholderKeySubstring = "your_perplexity_api_key_here"
	placeholderKeyPrefix    = "pplx-b8c1c2e8c9d4f5a6"
)

// IsPlaceholderKey reports whether apiKey is missing or one of the sample values
// that can never authenticate.
func IsPlaceholderKey(apiKey string) bool {
	apiKey = strings.TrimSpace(apiKey)
	return apiKey == "" ||
		strings.Contains(apiKey, placeholderKeySubstring) ||
		strings.HasPrefix(apiKey, placeholderKeyPrefix)
}

// APIError is returned for any non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("perplexity api error (status %d): %s", e.StatusCode, e.Body)
}

type PerplexityProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// Ensure PerplexityProvider implements SearchProvider
var _ llm.SearchProvider = &PerplexityProvider{}

func NewPerplexityProvider(apiKey, baseURL, model string, timeout time.Duration) *PerplexityProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &PerplexityProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// --- Request/Response structs (Internal to this package) ---

type chatRequest struct {
	Model                  string          `json:"model"`
	Messages               []llm.Message   `json:"messages"`
	Temperature            float64         `json:"temperature"`
	MaxTokens              int             `json:"max_tokens,omitempty"`
	TopP                   float64         `json:"top_p,omitempty"`
	TopK                   int             `json:"top_k"`
	Stream                 bool            `json:"stream"`
	PresencePenalty        float64         `json:"presence_penalty"`
	FrequencyPenalty       float64         `json:"frequency_penalty,omitempty"`
	SearchDomainFilter     []string        `json:"search_domain_filter,omitempty"`
	SearchRecencyFilter    string          `json:"search_recency_filter,omitempty"`
	ReturnImages           bool            `json:"return_images"`
	ReturnRelatedQuestions bool            `json:"return_related_questions"`
	ResponseFormat         *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type       string     `json:"type"`
	JSONSchema jsonSchema `json:"json_schema"`
}

type jsonSchema struct {
	Schema map[string]interface{} `json:"schema"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Citations     []string           `json:"citations"`
	SearchResults []llm.SearchResult `json:"search_results"`
}

// --- Interface Implementation ---

func (p *PerplexityProvider) Search(ctx context.Context, history []llm.Message, options ...llm.Option) (*llm.Completion, error) {
	opts := &llm.Options{
		Model:       p.model,
		Temperature: 0.2,
		MaxTokens:   1000,
	}
	for _, o := range options {
		o(opts)
	}

	reqBody := chatRequest{
		Model:               opts.Model,
		Messages:            history,
		Temperature:         opts.Temperature,
		MaxTokens:           opts.MaxTokens,
		TopP:                opts.TopP,
		FrequencyPenalty:    opts.FrequencyPenalty,
		SearchDomainFilter:  opts.SearchDomains,
		SearchRecencyFilter: opts.Recency,
	}
	if opts.ResponseSchema != nil {
		reqBody.ResponseFormat = &responseFormat{
			Type:       "json_schema",
			JSONSchema: jsonSchema{Schema: opts.ResponseSchema},
		}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", p.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.apiKey))

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	var chatResp chatResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("empty choices from perplexity api")
	}

	model := chatResp.Model
	if model == "" {
		model = opts.Model
	}

	return &llm.Completion{
		Model:         model,
		Content:       chatResp.Choices[0].Message.Content,
		Citations:     chatResp.Citations,
		SearchResults: chatResp.SearchResults,
	}, nil
}

func (p *PerplexityProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	completion, err := p.Search(ctx, history, options...)
	if err != nil {
		return "", err
	}
	return completion.Content, nil
}

func (p *PerplexityProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	// Wrap single prompt into a user message
	messages := []llm.Message{
		{Role: "user", Content: prompt},
	}
	return p.Chat(ctx, messages, options...)
}
