package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/bluberry-app/pricing/internal/pricing"
)

const geminiModel = "gemini-2.5-flash-lite"

// GeminiEstimator estimates prices with Google's Gemini API. It is used
// when a Gemini key is configured and no OpenAI key is.
type GeminiEstimator struct {
	client *genai.Client
}

// NewGeminiEstimator creates a Gemini-backed estimator for the given API
// key.
func NewGeminiEstimator(ctx context.Context, apiKey string) (*GeminiEstimator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiEstimator{client: client}, nil
}

// EstimatePrice asks Gemini for a single bare price token, with the same
// output validation as the OpenAI backend.
func (e *GeminiEstimator) EstimatePrice(ctx context.Context, item pricing.ItemDescriptor) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(buildPrompt(item)),
		}, genai.RoleUser),
	}

	result, err := e.client.Models.GenerateContent(ctx, geminiModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini price estimate failed: %w", err)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}

	raw := result.Text()
	price := SanitizePrice(raw)

	if result.UsageMetadata != nil {
		log.Info().
			Str("model", geminiModel).
			Int("inputTokens", int(result.UsageMetadata.PromptTokenCount)).
			Int("outputTokens", int(result.UsageMetadata.CandidatesTokenCount)).
			Str("price", price).
			Msg("price estimate llm call")
	}

	if price == "" {
		return "", fmt.Errorf("gemini output is not a bare price: %q", raw)
	}
	return price, nil
}
