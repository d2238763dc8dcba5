package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"smart-pantry/internal/config"
	"smart-pantry/internal/shared"
)

// GeminiClient talks to Gemini through the official SDK. It serves text,
// schema-constrained JSON and image analysis requests.
type GeminiClient struct {
	client    *genai.Client
	modelName string
	limiter   *rate.Limiter
}

// NewGeminiClient creates a new Gemini API client.
func NewGeminiClient(ctx context.Context, cfg *config.Config) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{
		client:    client,
		modelName: cfg.GeminiModel,
		limiter:   newLimiter(cfg.GeminiRequestsPerMinute),
	}, nil
}

// GenerateContent sends a prompt to the Gemini model and returns the generated text.
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	return c.generate(ctx, c.client.GenerativeModel(c.modelName), genai.Text(prompt))
}

// GenerateStructured asks for JSON matching schema.
func (c *GeminiClient) GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema) (ContentResponse, error) {
	return c.generate(ctx, c.jsonModel(schema), genai.Text(prompt))
}

// AnalyzeImage sends the image together with the prompt.
func (c *GeminiClient) AnalyzeImage(ctx context.Context, image []byte, mimeType, prompt string, schema *genai.Schema) (ContentResponse, error) {
	return c.generate(ctx, c.jsonModel(schema), genai.Blob{MIMEType: mimeType, Data: image}, genai.Text(prompt))
}

func (c *GeminiClient) jsonModel(schema *genai.Schema) *genai.GenerativeModel {
	model := c.client.GenerativeModel(c.modelName)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = schema
	return model
}

func (c *GeminiClient) generate(ctx context.Context, model *genai.GenerativeModel, parts ...genai.Part) (ContentResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return ContentResponse{}, fmt.Errorf("rate limiter: %w", err)
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return ContentResponse{}, err
	}

	return ContentResponse{
		Content: text,
		Usage:   usageFrom(resp, c.modelName),
	}, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("generated content is not text")
	}
	return sb.String(), nil
}

func usageFrom(resp *genai.GenerateContentResponse, model string) shared.TokenUsage {
	usage := shared.TokenUsage{Model: model}
	if resp.UsageMetadata != nil {
		usage.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		usage.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		usage.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return usage
}

// Close closes the underlying Gemini client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}
