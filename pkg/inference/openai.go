package inference

import (
	"cmp"
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Provider describes an OpenAI-compatible endpoint.
type Provider struct {
	Name    string
	BaseURL string
	Model   string
}

var (
	ProviderOpenAI   = Provider{Name: "openai", Model: "gpt-4o-mini"}
	ProviderGrok     = Provider{Name: "grok", BaseURL: "https://api.x.ai/v1", Model: "grok-4-fast-reasoning"}
	ProviderMoonshot = Provider{Name: "moonshot", BaseURL: "https://api.moonshot.ai/v1", Model: "kimi-k2-0905-preview"}
	ProviderLocal    = Provider{Name: "local", BaseURL: "http://localhost:1234/v1"}
)

// OpenAIInferencer implements Inferencer using OpenAI's official Go SDK against
// any OpenAI-compatible endpoint.
type OpenAIInferencer struct {
	client   *openai.Client
	model    string
	provider string
}

// NewOpenAIInferencer creates an inferencer for p. An empty model uses the
// provider default.
func NewOpenAIInferencer(p Provider, apiKey, model string) *OpenAIInferencer {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if p.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(p.BaseURL))
	}
	client := openai.NewClient(opts...)
	return &OpenAIInferencer{
		client:   &client,
		model:    cmp.Or(model, p.Model),
		provider: p.Name,
	}
}

// Infer sends text to the chat completion endpoint and returns the output.
func (o *OpenAIInferencer) Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error) {
	var p openai.ChatCompletionNewParams
	if params != nil {
		p = *params
	}
	p.Model = cmp.Or(p.Model, openai.ChatModel(o.model))
	p.Messages = []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Role: "system",
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(system),
				},
			}},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Role: "user",
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(user),
				},
			},
		},
	}

	p.MaxCompletionTokens = openai.Int(cmp.Or(p.MaxCompletionTokens.Value, 4096))
	p.Temperature = openai.Float(cmp.Or(p.Temperature.Value, 0.1))
	p.TopP = openai.Float(cmp.Or(p.TopP.Value, 1.0))

	resp, err := o.client.Chat.Completions.New(ctx, p)
	if err != nil {
		return "", fmt.Errorf("%s inference error: %w", o.provider, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned")
	}
	if resp.Choices[0].Message.Content == "" {
		return "", errors.New("empty completion content")
	}

	return resp.Choices[0].Message.Content, nil
}
