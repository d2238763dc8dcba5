package search

import (
	"context"

	"github.com/google/generative-ai-go/genai"

	"smart-pantry/internal/llm"
)

type mockGrounded struct {
	prompt string
	resp   llm.ContentResponse
	err    error
}

func (m *mockGrounded) GenerateGrounded(_ context.Context, prompt string) (llm.ContentResponse, error) {
	m.prompt = prompt
	return m.resp, m.err
}

type mockStructured struct {
	prompt string
	schema *genai.Schema
	resp   llm.ContentResponse
	err    error
}

func (m *mockStructured) GenerateStructured(_ context.Context, prompt string, schema *genai.Schema) (llm.ContentResponse, error) {
	m.prompt = prompt
	m.schema = schema
	return m.resp, m.err
}

type mockVision struct {
	mimeType string
	resp     llm.ContentResponse
	err      error
	calls    int
}

func (m *mockVision) AnalyzeImage(_ context.Context, _ []byte, mimeType, _ string, _ *genai.Schema) (llm.ContentResponse, error) {
	m.calls++
	m.mimeType = mimeType
	return m.resp, m.err
}
