package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"smart-pantry/internal/llm"
	"smart-pantry/internal/pantry"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestScan(t *testing.T) {
	vision := &mockVision{resp: llm.ContentResponse{Content: "```json\n" +
		`[{"item":"Canned Tomatoes","category":"Canned Goods","quantity_estimate":"2 cans"},{"item":" ","category":"?","quantity_estimate":""}]` +
		"\n```"}}
	s := NewScanner(vision, zap.NewNop())

	res, err := s.Scan(context.Background(), pngHeader, "")
	require.NoError(t, err)

	assert.Equal(t, "image/png", vision.mimeType)
	assert.Equal(t, []pantry.Item{{Name: "Canned Tomatoes", Category: "Canned Goods", QuantityEstimate: "2 cans"}}, res.Items)
	assert.Equal(t, AgentPantryScanner, res.Meta.AgentName)
}

func TestScan_NothingRecognised(t *testing.T) {
	s := NewScanner(&mockVision{resp: llm.ContentResponse{Content: "[]"}}, zap.NewNop())

	res, err := s.Scan(context.Background(), pngHeader, "image/jpeg")
	require.NoError(t, err)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
}

func TestScan_Errors(t *testing.T) {
	t.Run("NotAnImage", func(t *testing.T) {
		vision := &mockVision{}
		_, err := NewScanner(vision, zap.NewNop()).Scan(context.Background(), []byte("hello world"), "")
		assert.ErrorIs(t, err, ErrUnsupportedImage)
		assert.Zero(t, vision.calls)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := NewScanner(&mockVision{}, zap.NewNop()).Scan(context.Background(), nil, "image/png")
		assert.ErrorIs(t, err, ErrUnsupportedImage)
	})

	t.Run("Malformed", func(t *testing.T) {
		vision := &mockVision{resp: llm.ContentResponse{Content: "a jar of jam"}}
		_, err := NewScanner(vision, zap.NewNop()).Scan(context.Background(), pngHeader, "image/png")
		assert.ErrorIs(t, err, ErrMalformedScan)
	})

	t.Run("Transport", func(t *testing.T) {
		boom := errors.New("timeout")
		_, err := NewScanner(&mockVision{err: boom}, zap.NewNop()).Scan(context.Background(), pngHeader, "image/png")
		assert.ErrorIs(t, err, boom)
	})
}
