package vision

import (
	"context"
	"fmt"

	"github.com/pricehunt/pricehunt/internal/llmjson"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

const geminiModel = "gemini-2.5-flash"

// Gemini 2.5 Flash pricing (per million tokens)
const (
	geminiInputPricePerMillion  = 0.30
	geminiOutputPricePerMillion = 2.50
)

const identifySystemPrompt = `You are a product identification expert. Analyze product images and extract key product information.

IMPORTANT: Respond in %[1]s. All text fields (productName, category, description, pros, cons, usageTips, recommendation) must be in %[1]s.

Your response must be valid JSON with this exact structure (DO NOT include pricing information):
{
  "productName": "Full product name with brand and model in %[1]s",
  "category": "Product category in %[1]s",
  "description": "Brief 2-3 sentence description in %[1]s",
  "rating": 4.2,
  "reviewCount": 1250,
  "reviewBreakdown": {
    "quality": 85,
    "value": 70,
    "durability": 60
  },
  "pros": ["Pro 1 in %[1]s", "Pro 2 in %[1]s", "Pro 3 in %[1]s"],
  "cons": ["Con 1 in %[1]s", "Con 2 in %[1]s"],
  "usageTips": ["Tip 1 in %[1]s", "Tip 2 in %[1]s", "Tip 3 in %[1]s"],
  "recommendation": "Personalized recommendation in %[1]s"
}

Never omit the numeric fields. Respond ONLY with the JSON object, no markdown or other text.`

const identifyUserPrompt = `Analyze this product photo: Identify the exact item (brand, model), extract key details (including barcode if visible), provide aggregated review insights, pros/cons, and usage recommendations. DO NOT provide pricing information.`

// GeminiIdentifier uses Google's Gemini API for product identification.
type GeminiIdentifier struct {
	client *genai.Client
}

// NewGeminiIdentifier creates a Gemini-based identifier.
func NewGeminiIdentifier(ctx context.Context, apiKey string) (*GeminiIdentifier, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiIdentifier{client: client}, nil
}

// Identify implements the Identifier interface using Gemini.
func (g *GeminiIdentifier) Identify(ctx context.Context, imageData []byte, mimeType, language string) (*Identification, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(fmt.Sprintf(identifySystemPrompt, language)),
		genai.NewPartFromText(identifyUserPrompt),
		{InlineData: &genai.Blob{Data: imageData, MIMEType: mimeType}},
	}

	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, geminiModel, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from Gemini")
	}

	ident, err := parseIdentification(result.Text())
	if err != nil {
		return nil, err
	}

	usage := Usage{}
	if result.UsageMetadata != nil {
		usage.InputTokens = int64(result.UsageMetadata.PromptTokenCount)
		usage.OutputTokens = int64(result.UsageMetadata.CandidatesTokenCount)
		usage.TotalTokens = int64(result.UsageMetadata.TotalTokenCount)
		usage.CostUSD = calculateCost(usage.InputTokens, usage.OutputTokens, geminiInputPricePerMillion, geminiOutputPricePerMillion)
	}

	log.Info().
		Str("model", geminiModel).
		Str("language", language).
		Str("productName", ident.ProductName).
		Int64("inputTokens", usage.InputTokens).
		Int64("outputTokens", usage.OutputTokens).
		Float64("costUSD", usage.CostUSD).
		Msg("vision llm call")

	return ident, nil
}

func calculateCost(inputTokens, outputTokens int64, inputPrice, outputPrice float64) float64 {
	inputCost := float64(inputTokens) / 1_000_000 * inputPrice
	outputCost := float64(outputTokens) / 1_000_000 * outputPrice
	return inputCost + outputCost
}

func parseIdentification(text string) (*Identification, error) {
	var ident Identification
	if err := llmjson.Unmarshal(text, &ident); err != nil {
		return nil, fmt.Errorf("failed to parse product data from model response: %w", err)
	}
	if ident.ProductName == "" {
		return nil, fmt.Errorf("model response has no product name")
	}
	return &ident, nil
}
