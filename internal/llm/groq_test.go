package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroqClient_GenerateStructured(t *testing.T) {
	var body map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer groq_key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Write([]byte(`{
			"choices": [{"message": {"content": "{\"recipes\": []}"}}],
			"usage": {"prompt_tokens": 5, "completion_tokens": 7, "total_tokens": 12}
		}`))
	}))
	defer ts.Close()

	c := &groqClient{apiKey: "groq_key", url: ts.URL, httpClient: ts.Client()}
	resp, err := c.GenerateStructured(context.Background(), "cook something", nil)
	require.NoError(t, err)

	assert.Equal(t, `{"recipes": []}`, resp.Content)
	assert.Equal(t, 12, resp.Usage.TotalTokens)
	assert.Equal(t, groqModel, resp.Usage.Model)
	assert.Equal(t, map[string]any{"type": "json_object"}, body["response_format"])
}

func TestGroqClient_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := &groqClient{apiKey: "k", url: ts.URL, httpClient: ts.Client()}
	_, err := c.GenerateContent(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "groq api error: status=500")
}
