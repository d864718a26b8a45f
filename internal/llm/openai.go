package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/bluberry-app/pricing/internal/pricing"
)

const (
	openAIBaseURL = "https://api.openai.com"
	openAIModel   = "gpt-4o-mini"
)

// OpenAIEstimator estimates prices with the OpenAI chat completions API.
type OpenAIEstimator struct {
	httpClient *resty.Client
	model      string
}

// OpenAIOpts configures an OpenAIEstimator. BaseURL is overridable for
// tests; the model defaults to gpt-4o-mini.
type OpenAIOpts struct {
	APIKey  string
	BaseURL string
	Model   string
}

// NewOpenAIEstimator builds an estimator for the given API key.
func NewOpenAIEstimator(opts OpenAIOpts) *OpenAIEstimator {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = openAIBaseURL
	}
	model := opts.Model
	if model == "" {
		model = openAIModel
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(20 * time.Second).
		SetHeader("Authorization", "Bearer "+opts.APIKey)
	return &OpenAIEstimator{httpClient: httpClient, model: model}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// EstimatePrice asks the model for a single bare price token. Output that
// doesn't match the $<digits> pattern is reported as an error so the
// pipeline falls through to the heuristic model.
func (e *OpenAIEstimator) EstimatePrice(ctx context.Context, item pricing.ItemDescriptor) (string, error) {
	result := &chatResponse{}
	res, err := e.httpClient.NewRequest().
		SetContext(ctx).
		SetBody(chatRequest{
			Model: e.model,
			Messages: []chatMessage{
				{Role: "user", Content: buildPrompt(item)},
			},
			Temperature: 0.2,
			MaxTokens:   10,
		}).
		SetResult(result).
		Post("/v1/chat/completions")
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	if res.IsError() {
		return "", fmt.Errorf("openai request failed (status: %d)", res.StatusCode())
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("empty response from openai")
	}

	raw := result.Choices[0].Message.Content
	price := SanitizePrice(raw)

	log.Info().
		Str("model", e.model).
		Int("inputTokens", result.Usage.PromptTokens).
		Int("outputTokens", result.Usage.CompletionTokens).
		Str("price", price).
		Msg("price estimate llm call")

	if price == "" {
		return "", fmt.Errorf("openai output is not a bare price: %q", raw)
	}
	return price, nil
}
