package vision

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog/log"
)

// GatewayIdentifier uses an OpenAI-compatible chat completions gateway
// for product identification. The gateway routes to a vision-capable
// model selected by name.
type GatewayIdentifier struct {
	client openai.Client
	model  string
}

// NewGatewayIdentifier creates an identifier backed by an
// OpenAI-compatible endpoint.
func NewGatewayIdentifier(baseURL, apiKey, model string) *GatewayIdentifier {
	return &GatewayIdentifier{
		client: openai.NewClient(
			option.WithBaseURL(baseURL),
			option.WithAPIKey(apiKey),
		),
		model: model,
	}
}

// Identify implements the Identifier interface using the gateway.
func (o *GatewayIdentifier) Identify(ctx context.Context, imageData []byte, mimeType, language string) (*Identification, error) {
	b64Data := base64.StdEncoding.EncodeToString(imageData)
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, b64Data)

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(fmt.Sprintf(identifySystemPrompt, language)),
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(identifyUserPrompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: dataURL,
				}),
			}),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from vision gateway")
	}

	ident, err := parseIdentification(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("model", o.model).
		Str("language", language).
		Str("productName", ident.ProductName).
		Int64("inputTokens", resp.Usage.PromptTokens).
		Int64("outputTokens", resp.Usage.CompletionTokens).
		Msg("vision llm call")

	return ident, nil
}
