package scribbles

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"toddlerdoc-backend/internal/llm"
	"toddlerdoc-backend/internal/shared/metrics"
	"toddlerdoc-backend/internal/shared/telemetry"
)

const (
	captionMaxTokens   = 50
	captionTemperature = 0.8
	pathsMaxTokens     = 500
	pathsTemperature   = 0.9

	// FallbackCaption is used when the model returns empty content.
	FallbackCaption = "I sorry I drew on it"
)

// ScribblePath is one generated stroke: an SVG path string plus a hex color.
type ScribblePath struct {
	Path  string `json:"path"`
	Color string `json:"color"`
}

// PathsResult carries the generated strokes and whether the procedural
// fallback was used instead of model output.
type PathsResult struct {
	Paths        []ScribblePath
	FallbackUsed bool
}

// Service generates toddler captions and scribble paths via an llm.Client.
type Service struct {
	client llm.Client
	// rnd allows deterministic fallbacks in tests.
	rnd *rand.Rand
}

// NewService creates the generation service.
func NewService(client llm.Client) *Service {
	return &Service{client: client}
}

// WithRand overrides the random source used for fallback paths.
func (s *Service) WithRand(rnd *rand.Rand) *Service {
	s.rnd = rnd
	return s
}

// GenerateCaption asks the model for a toddler-style caption for the named
// document. Empty model output falls back to FallbackCaption; transport and
// provider errors propagate to the caller.
func (s *Service) GenerateCaption(ctx context.Context, fileName string, style Style) (string, error) {
	prompt := fmt.Sprintf(`Generate a short, adorable toddler-style caption for a document that has been "decorated" with %s scribbles. The document is called %q. 

The caption should be:
- Written as if by a 2-4 year old
- Apologetic but innocent
- Include simple spelling mistakes or phonetic spelling
- Be 1-2 sentences max
- Examples: "I sorry I color", "I maked it pretty", "Oopsie I drew on it", "I help you daddy"

Generate just the caption text, nothing else.`, style, fileName)

	content, err := s.client.Complete(ctx, llm.Request{
		Messages:    []llm.Message{{Role: "user", Content: prompt}},
		MaxTokens:   captionMaxTokens,
		Temperature: captionTemperature,
	})
	if err != nil {
		return "", err
	}

	metrics.IncCaption()
	if strings.TrimSpace(content) == "" {
		metrics.IncCaptionFallback()
		telemetry.Warn("scribbles.caption_fallback", map[string]any{
			"file_name": fileName,
			"style":     string(style),
		})
		return FallbackCaption, nil
	}
	return content, nil
}

// GeneratePaths asks the model for floor(intensity*2) scribble paths on the
// given canvas. Unparseable model output falls back to two procedural paths.
func (s *Service) GeneratePaths(ctx context.Context, style Style, intensity float64, canvasWidth, canvasHeight int) (PathsResult, error) {
	count := int(math.Floor(intensity * 2))

	prompt := fmt.Sprintf(`Generate SVG path data for %s toddler scribbles on a %dx%d canvas. 
    
Intensity level: %g/10 (higher = more scribbles)

Create %d different scribble paths that look like:
- %s

Return as JSON array of objects with "path" (SVG path string) and "color" (hex color) properties.
Make paths look authentically childlike - wobbly, imperfect, and random.`,
		style, canvasWidth, canvasHeight, intensity, count, style.PromptClause())

	content, err := s.client.Complete(ctx, llm.Request{
		Messages:    []llm.Message{{Role: "user", Content: prompt}},
		MaxTokens:   pathsMaxTokens,
		Temperature: pathsTemperature,
	})
	if err != nil {
		return PathsResult{}, err
	}

	metrics.IncScribbleBatch()

	// Empty model content is an empty batch, not a parse failure.
	if strings.TrimSpace(content) == "" {
		return PathsResult{Paths: []ScribblePath{}}, nil
	}

	var paths []ScribblePath
	if err := json.Unmarshal([]byte(content), &paths); err != nil || paths == nil {
		metrics.IncScribbleFallback()
		telemetry.Warn("scribbles.paths_fallback", map[string]any{
			"style":     string(style),
			"intensity": intensity,
		})
		return PathsResult{
			Paths:        s.fallbackPaths(canvasWidth, canvasHeight),
			FallbackUsed: true,
		}, nil
	}
	return PathsResult{Paths: paths}, nil
}

// fallbackPaths mirrors the procedural scribbles used when model output is
// not valid JSON: one quadratic curve and one straight line.
func (s *Service) fallbackPaths(canvasWidth, canvasHeight int) []ScribblePath {
	w := float64(canvasWidth)
	h := float64(canvasHeight)
	return []ScribblePath{
		{
			Path: fmt.Sprintf("M%g,%g Q%g,%g %g,%g",
				s.float64n(w), s.float64n(h),
				s.float64n(w), s.float64n(h),
				s.float64n(w), s.float64n(h)),
			Color: "#FF6B6B",
		},
		{
			Path: fmt.Sprintf("M%g,%g L%g,%g",
				s.float64n(w), s.float64n(h),
				s.float64n(w), s.float64n(h)),
			Color: "#4ECDC4",
		},
	}
}

func (s *Service) float64n(max float64) float64 {
	if s.rnd != nil {
		return s.rnd.Float64() * max
	}
	return rand.Float64() * max
}
