package aimodel

import (
	"context"

	"github.com/StuFraser/aqua-ripple/pkg/metrics"
)

// Prompt is one multimodal request: an instruction followed by images in order.
type Prompt struct {
	Text      string
	ImageURLs []string
}

// Reply is the raw text answer and the token usage the model reported.
type Reply struct {
	Text  string
	Model string
	Usage metrics.TokenUsage
}

// Generator produces a text reply for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt Prompt) (Reply, error)
}
