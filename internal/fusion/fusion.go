// Package fusion reconciles the scan's data sources with a language
// model. Fusion and translation rewrite narrative text only; pricing and
// numeric fields always pass through untouched, guaranteed by copying
// them from the input record rather than trusting the model output.
package fusion

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lithammer/dedent"
	"github.com/pricehunt/pricehunt/internal/geo"
	"github.com/pricehunt/pricehunt/internal/llmjson"
	"github.com/pricehunt/pricehunt/internal/pipeline"
	"github.com/pricehunt/pricehunt/internal/productdb"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

const fusionModel = "gemini-2.5-flash"

// Gemini 2.5 Flash pricing (per million tokens)
const (
	inputPricePerMillion  = 0.30
	outputPricePerMillion = 2.50
)

var mergePrompt = dedent.Dedent(`
	You are a data validation and merging expert. You have product information from multiple sources:

	SOURCE 1 - AI Image Analysis:
	%s

	SOURCE 2 - Product Database:
	%s

	SOURCE 3 - Real-time LOCAL Pricing (near %s, %s):
	Best Price: %s %s
	Average Price: %s
	Dealer: %s
	Available Stores: %d

	User Language: %s

	TASK: Intelligently merge this data, prioritizing:
	1. Most accurate product name and specifications
	2. Real verified data over estimates
	3. Local availability over generic or global retailers
	4. Keep response in %s

	Do NOT change any prices or numeric values; rewrite only the descriptive text.

	Return ONLY valid JSON in this exact structure (all text in %s):
	{
	  "productName": "Most accurate product name",
	  "category": "Category",
	  "description": "Enhanced description incorporating all sources",
	  "pros": ["verified pros"],
	  "cons": ["verified cons"],
	  "usageTips": ["practical tips"],
	  "recommendation": "Personalized recommendation emphasizing local availability"
	}`)

var translatePrompt = dedent.Dedent(`
	You are a professional translator. Translate the product information to English while preserving the JSON structure.

	Your response must be valid JSON with this exact structure:
	{
	  "productName": "Translated product name",
	  "category": "Translated category",
	  "description": "Translated description",
	  "pros": ["Translated pros"],
	  "cons": ["Translated cons"],
	  "usageTips": ["Translated tips"],
	  "recommendation": "Translated recommendation"
	}

	Only translate the text fields. Do NOT modify: rating, reviewCount, reviewBreakdown, or any numeric values.

	Translate this product information to English:

	%s`)

var questionPrompt = dedent.Dedent(`
	You are a product expert assistant. Answer questions about products with specific, actionable information.

	CRITICAL RULES:
	- Return ONLY a JSON array of exactly 3 bullet points, nothing else
	- Each bullet point should be specific and informative
	- Do NOT include any explanatory text outside the JSON
	- Be concise and direct

	Format: ["Bullet point 1", "Bullet point 2", "Bullet point 3"]

	Product: %s
	Category: %s
	Country: %s
	Question: %s`)

// narrative is the subset of record fields the model may rewrite.
type narrative struct {
	ProductName    string   `json:"productName"`
	Category       string   `json:"category"`
	Description    string   `json:"description"`
	Pros           []string `json:"pros"`
	Cons           []string `json:"cons"`
	UsageTips      []string `json:"usageTips"`
	Recommendation string   `json:"recommendation"`
}

// Question is one product Q&A request.
type Question struct {
	Question    string `json:"question"`
	ProductName string `json:"productName"`
	Category    string `json:"category"`
	Country     string `json:"country"`
}

// Merger runs the fusion, translation and Q&A model calls.
type Merger struct {
	client *genai.Client
	model  string
}

func NewMerger(ctx context.Context, apiKey string) (*Merger, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Merger{client: client, model: fusionModel}, nil
}

// Enhance asks the model to reconcile the image analysis, the product
// database snippet and the pricing summary into one coherent narrative.
// The returned record carries the input's pricing and numeric fields
// unchanged.
func (m *Merger) Enhance(ctx context.Context, rec *pipeline.ProductRecord, extra productdb.Snippet, loc geo.Context) (*pipeline.ProductRecord, error) {
	identJSON, err := json.MarshalIndent(rec.Identification, "", "  ")
	if err != nil {
		return nil, err
	}
	extraJSON, err := json.MarshalIndent(extra, "", "  ")
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(mergePrompt,
		identJSON, extraJSON,
		loc.City, loc.Country,
		rec.BestPrice, rec.Currency,
		rec.AveragePrice, rec.BestDealer, len(rec.NearbyStores),
		loc.Language, loc.Language, loc.Language,
	)

	text, err := m.generate(ctx, prompt, "fusion llm call")
	if err != nil {
		return nil, err
	}

	var n narrative
	if err := llmjson.Unmarshal(text, &n); err != nil {
		return nil, fmt.Errorf("failed to parse fusion response: %w", err)
	}

	merged := *rec
	applyNarrative(&merged, n)
	return &merged, nil
}

// TranslateToEnglish returns a copy of the record with narrative text in
// English and IsTranslated set.
func (m *Merger) TranslateToEnglish(ctx context.Context, rec *pipeline.ProductRecord) (*pipeline.ProductRecord, error) {
	subject, err := json.MarshalIndent(narrativeOf(rec), "", "  ")
	if err != nil {
		return nil, err
	}

	text, err := m.generate(ctx, fmt.Sprintf(translatePrompt, subject), "translation llm call")
	if err != nil {
		return nil, err
	}

	var n narrative
	if err := llmjson.Unmarshal(text, &n); err != nil {
		return nil, fmt.Errorf("failed to parse translation response: %w", err)
	}

	translated := *rec
	applyNarrative(&translated, n)
	translated.IsTranslated = true
	return &translated, nil
}

// AnswerQuestion answers a free-form question about a product with at
// most three bullet points.
func (m *Merger) AnswerQuestion(ctx context.Context, q Question) ([]string, error) {
	country := q.Country
	if country == "" {
		country = "US"
	}

	text, err := m.generate(ctx, fmt.Sprintf(questionPrompt, q.ProductName, q.Category, country, q.Question), "question llm call")
	if err != nil {
		return nil, err
	}

	var points []string
	if err := llmjson.Unmarshal(text, &points); err != nil {
		return nil, fmt.Errorf("failed to parse question response: %w", err)
	}
	if len(points) > 3 {
		points = points[:3]
	}
	return points, nil
}

func (m *Merger) generate(ctx context.Context, prompt, logMsg string) (string, error) {
	result, err := m.client.Models.GenerateContent(ctx, m.model, []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(prompt)}, genai.RoleUser),
	}, nil)
	if err != nil {
		return "", fmt.Errorf("gemini call failed: %w", err)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}

	if result.UsageMetadata != nil {
		inputTokens := int64(result.UsageMetadata.PromptTokenCount)
		outputTokens := int64(result.UsageMetadata.CandidatesTokenCount)
		cost := float64(inputTokens)/1_000_000*inputPricePerMillion +
			float64(outputTokens)/1_000_000*outputPricePerMillion
		log.Info().
			Str("model", m.model).
			Int64("inputTokens", inputTokens).
			Int64("outputTokens", outputTokens).
			Float64("costUSD", cost).
			Msg(logMsg)
	}

	return result.Text(), nil
}

func narrativeOf(rec *pipeline.ProductRecord) narrative {
	return narrative{
		ProductName:    rec.ProductName,
		Category:       rec.Category,
		Description:    rec.Description,
		Pros:           rec.Pros,
		Cons:           rec.Cons,
		UsageTips:      rec.UsageTips,
		Recommendation: rec.Recommendation,
	}
}

// applyNarrative overwrites only the fields the model is allowed to
// rewrite. Empty model fields keep the original text.
func applyNarrative(rec *pipeline.ProductRecord, n narrative) {
	if n.ProductName != "" {
		rec.ProductName = n.ProductName
	}
	if n.Category != "" {
		rec.Category = n.Category
	}
	if n.Description != "" {
		rec.Description = n.Description
	}
	if len(n.Pros) > 0 {
		rec.Pros = n.Pros
	}
	if len(n.Cons) > 0 {
		rec.Cons = n.Cons
	}
	if len(n.UsageTips) > 0 {
		rec.UsageTips = n.UsageTips
	}
	if n.Recommendation != "" {
		rec.Recommendation = n.Recommendation
	}
}
