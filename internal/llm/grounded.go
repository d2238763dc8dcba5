package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"smart-pantry/internal/config"
	"smart-pantry/internal/shared"
)

// GroundedClient calls the Gemini REST API with the Google Search tool enabled
// and returns the grounding sources next to the answer.
type GroundedClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewGroundedClient creates a grounded search client. No client timeout is
// set; the request lives as long as ctx.
func NewGroundedClient(cfg *config.Config) *GroundedClient {
	return &GroundedClient{
		apiKey:     cfg.GeminiAPIKey,
		baseURL:    cfg.GeminiBaseURL,
		model:      cfg.GeminiModel,
		httpClient: &http.Client{},
		limiter:    newLimiter(cfg.GeminiRequestsPerMinute),
	}
}

type groundedRequest struct {
	Contents []groundedContent `json:"contents"`
	Tools    []map[string]any  `json:"tools"`
}

type groundedContent struct {
	Role  string         `json:"role,omitempty"`
	Parts []groundedPart `json:"parts"`
}

type groundedPart struct {
	Text string `json:"text,omitempty"`
}

type groundedResponse struct {
	Candidates []struct {
		Content           groundedContent `json:"content"`
		GroundingMetadata *struct {
			GroundingChunks []struct {
				Web *struct {
					URI   string `json:"uri"`
					Title string `json:"title"`
				} `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// GenerateGrounded sends the prompt with web search grounding.
func (c *GroundedClient) GenerateGrounded(ctx context.Context, prompt string) (ContentResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return ContentResponse{}, fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(groundedRequest{
		Contents: []groundedContent{{Role: "user", Parts: []groundedPart{{Text: prompt}}}},
		Tools:    []map[string]any{{"google_search": map[string]any{}}},
	})
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return ContentResponse{}, fmt.Errorf("gemini api error: status=%d body=%s", resp.StatusCode, string(bodyBytes))
	}

	var gr groundedResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return ContentResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(gr.Candidates) == 0 {
		return ContentResponse{}, fmt.Errorf("no content generated")
	}

	cand := gr.Candidates[0]
	var sb strings.Builder
	for _, p := range cand.Content.Parts {
		sb.WriteString(p.Text)
	}

	var sources []GroundingChunk
	if cand.GroundingMetadata != nil {
		for _, chunk := range cand.GroundingMetadata.GroundingChunks {
			if chunk.Web == nil || chunk.Web.URI == "" {
				continue
			}
			sources = append(sources, GroundingChunk{URI: chunk.Web.URI, Title: chunk.Web.Title})
		}
	}

	return ContentResponse{
		Content: sb.String(),
		Sources: sources,
		Usage: shared.TokenUsage{
			PromptTokens:     gr.UsageMetadata.PromptTokenCount,
			CompletionTokens: gr.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      gr.UsageMetadata.TotalTokenCount,
			Model:            c.model,
		},
	}, nil
}
