package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"smart-pantry/internal/llm"
	"smart-pantry/internal/pantry"
	"smart-pantry/internal/shared"
)

const AgentPantryScanner = "PantryScanner"

var (
	ErrUnsupportedImage = errors.New("unsupported image type")
	ErrMalformedScan    = errors.New("malformed image analysis response")
)

// ScanResult lists the recognised items. An empty list means nothing was recognised.
type ScanResult struct {
	Items []pantry.Item
	Meta  shared.AgentMeta
}

// Scanner turns pantry photos into inventory items.
type Scanner struct {
	vision llm.VisionGenerator
	log    *zap.Logger
}

func NewScanner(vision llm.VisionGenerator, log *zap.Logger) *Scanner {
	return &Scanner{vision: vision, log: log}
}

// Scan analyses image. An empty mimeType is sniffed from the content.
func (s *Scanner) Scan(ctx context.Context, image []byte, mimeType string) (ScanResult, error) {
	if len(image) == 0 {
		return ScanResult{}, fmt.Errorf("%w: empty image", ErrUnsupportedImage)
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(image)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return ScanResult{}, fmt.Errorf("%w: %s", ErrUnsupportedImage, mimeType)
	}

	start := time.Now()
	resp, err := s.vision.AnalyzeImage(ctx, image, mimeType, scanPrompt, pantrySchema)
	meta := shared.AgentMeta{AgentName: AgentPantryScanner, Usage: resp.Usage, Latency: time.Since(start)}
	if err != nil {
		return ScanResult{Meta: meta}, fmt.Errorf("image analysis failed: %w", err)
	}

	items := []pantry.Item{}
	if err := json.Unmarshal([]byte(StripCodeFence(resp.Content)), &items); err != nil {
		s.log.Warn("unparseable image analysis", zap.Error(err))
		return ScanResult{Meta: meta}, fmt.Errorf("%w: %w", ErrMalformedScan, err)
	}

	kept := make([]pantry.Item, 0, len(items))
	for _, item := range items {
		item.Name = strings.TrimSpace(item.Name)
		if item.Name != "" {
			kept = append(kept, item)
		}
	}
	return ScanResult{Items: kept, Meta: meta}, nil
}
