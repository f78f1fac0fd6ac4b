package inference

import (
	"cmp"
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"google.golang.org/genai"
)

type GeminiInferencer struct {
	client *genai.Client
	model  string
}

// NewGeminiInferencer creates an inferencer backed by the Gemini API.
func NewGeminiInferencer(ctx context.Context, apiKey string, model string) (*GeminiInferencer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiInferencer{
		client: client,
		model:  cmp.Or(model, "gemini-2.5-flash"),
	}, nil
}

// Infer asks Gemini for a JSON answer. Only the model and token limit of
// params are honoured.
func (o *GeminiInferencer) Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error) {
	if params == nil {
		params = new(openai.ChatCompletionNewParams)
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		MaxOutputTokens:   int32(cmp.Or(params.MaxCompletionTokens.Value, 4096)),
	}

	result, err := o.client.Models.GenerateContent(
		ctx,
		cmp.Or(string(params.Model), o.model),
		genai.Text(user),
		config,
	)
	if err != nil {
		return "", fmt.Errorf("gemini inference error: %w", err)
	}

	return result.Text(), nil
}
