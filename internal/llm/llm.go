package llm

import (
	"context"
	"time"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"

	"smart-pantry/internal/shared"
)

// GroundingChunk is a web source a grounded answer was based on.
type GroundingChunk struct {
	URI   string
	Title string
}

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
	// Sources is only populated by grounded generation.
	Sources []GroundingChunk
}

// TextGenerator is an interface for generating text from a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (ContentResponse, error)
}

// StructuredGenerator returns JSON conforming to schema. Providers without
// schema support fall back to plain JSON mode.
type StructuredGenerator interface {
	GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema) (ContentResponse, error)
}

// VisionGenerator analyses an image and answers with JSON conforming to schema.
type VisionGenerator interface {
	AnalyzeImage(ctx context.Context, image []byte, mimeType, prompt string, schema *genai.Schema) (ContentResponse, error)
}

// GroundedGenerator answers using live web search and reports its sources.
type GroundedGenerator interface {
	GenerateGrounded(ctx context.Context, prompt string) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}

// newLimiter allows requestsPerMinute calls with a burst of one.
func newLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
}
