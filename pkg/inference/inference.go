package inference

import (
	"context"

	"github.com/openai/openai-go/v3"
)

// Inferencer runs a single system+user completion and returns the raw text.
// params may be nil; implementations fill in their own defaults.
type Inferencer interface {
	Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error)
}
