package scribbles

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"toddlerdoc-backend/internal/llm"
)

type fakeClient struct {
	lastReq llm.Request
	content string
	err     error
}

func (f *fakeClient) Complete(ctx context.Context, req llm.Request) (string, error) {
	f.lastReq = req
	return f.content, f.err
}

func TestGenerateCaptionUsesModelOutput(t *testing.T) {
	client := &fakeClient{content: "I maked it pretty"}
	svc := NewService(client)

	caption, err := svc.GenerateCaption(context.Background(), "report.pdf", StyleCrayon)
	if err != nil {
		t.Fatalf("GenerateCaption: %v", err)
	}
	if caption != "I maked it pretty" {
		t.Fatalf("caption = %q", caption)
	}
	if client.lastReq.MaxTokens != 50 {
		t.Fatalf("MaxTokens = %d", client.lastReq.MaxTokens)
	}
	if client.lastReq.Temperature != 0.8 {
		t.Fatalf("Temperature = %v", client.lastReq.Temperature)
	}
	if len(client.lastReq.Messages) != 1 || client.lastReq.Messages[0].Role != "user" {
		t.Fatalf("messages = %+v", client.lastReq.Messages)
	}
	prompt := client.lastReq.Messages[0].Content
	if !strings.Contains(prompt, "crayon") || !strings.Contains(prompt, "report.pdf") {
		t.Fatalf("prompt missing style or file name: %q", prompt)
	}
}

func TestGenerateCaptionFallsBackOnEmptyContent(t *testing.T) {
	svc := NewService(&fakeClient{content: ""})

	caption, err := svc.GenerateCaption(context.Background(), "report.pdf", StyleMarker)
	if err != nil {
		t.Fatalf("GenerateCaption: %v", err)
	}
	if caption != FallbackCaption {
		t.Fatalf("caption = %q, want fallback", caption)
	}
}

func TestGenerateCaptionPropagatesClientError(t *testing.T) {
	svc := NewService(&fakeClient{err: errors.New("boom")})

	if _, err := svc.GenerateCaption(context.Background(), "report.pdf", StylePencil); err == nil {
		t.Fatalf("expected error from client")
	}
}

func TestGeneratePathsParsesModelOutput(t *testing.T) {
	client := &fakeClient{content: `[{"path":"M10,10 L20,20","color":"#FF1744"},{"path":"M5,5 Q10,10 15,15","color":"#2196F3"}]`}
	svc := NewService(client)

	result, err := svc.GeneratePaths(context.Background(), StyleMarker, 7, 800, 600)
	if err != nil {
		t.Fatalf("GeneratePaths: %v", err)
	}
	if result.FallbackUsed {
		t.Fatalf("expected no fallback")
	}
	if len(result.Paths) != 2 {
		t.Fatalf("paths = %d", len(result.Paths))
	}
	if result.Paths[0].Color != "#FF1744" {
		t.Fatalf("color = %q", result.Paths[0].Color)
	}
	if client.lastReq.MaxTokens != 500 {
		t.Fatalf("MaxTokens = %d", client.lastReq.MaxTokens)
	}
	if client.lastReq.Temperature != 0.9 {
		t.Fatalf("Temperature = %v", client.lastReq.Temperature)
	}
	prompt := client.lastReq.Messages[0].Content
	if !strings.Contains(prompt, "Create 14 different scribble paths") {
		t.Fatalf("prompt missing floor(intensity*2) count: %q", prompt)
	}
	if !strings.Contains(prompt, "800x600") {
		t.Fatalf("prompt missing canvas size: %q", prompt)
	}
	if !strings.Contains(prompt, StyleMarker.PromptClause()) {
		t.Fatalf("prompt missing style clause: %q", prompt)
	}
}

func TestGeneratePathsFallsBackOnInvalidJSON(t *testing.T) {
	svc := NewService(&fakeClient{content: "sure! here are your scribbles"}).
		WithRand(rand.New(rand.NewSource(1)))

	result, err := svc.GeneratePaths(context.Background(), StyleCrayon, 5, 800, 600)
	if err != nil {
		t.Fatalf("GeneratePaths: %v", err)
	}
	if !result.FallbackUsed {
		t.Fatalf("expected fallback")
	}
	if len(result.Paths) != 2 {
		t.Fatalf("fallback paths = %d, want 2", len(result.Paths))
	}
	if result.Paths[0].Color != "#FF6B6B" || result.Paths[1].Color != "#4ECDC4" {
		t.Fatalf("fallback colors = %q, %q", result.Paths[0].Color, result.Paths[1].Color)
	}
	if !strings.HasPrefix(result.Paths[0].Path, "M") || !strings.Contains(result.Paths[0].Path, "Q") {
		t.Fatalf("first fallback path = %q, want M..Q curve", result.Paths[0].Path)
	}
	if !strings.Contains(result.Paths[1].Path, "L") {
		t.Fatalf("second fallback path = %q, want M..L line", result.Paths[1].Path)
	}
}

func TestGeneratePathsEmptyContentIsEmptyBatch(t *testing.T) {
	svc := NewService(&fakeClient{content: ""})

	result, err := svc.GeneratePaths(context.Background(), StylePencil, 3, 800, 600)
	if err != nil {
		t.Fatalf("GeneratePaths: %v", err)
	}
	if result.FallbackUsed {
		t.Fatalf("empty content should not count as fallback")
	}
	if len(result.Paths) != 0 {
		t.Fatalf("paths = %d, want 0", len(result.Paths))
	}
}

func TestGeneratePathsPropagatesClientError(t *testing.T) {
	svc := NewService(&fakeClient{err: errors.New("rate limited")})

	if _, err := svc.GeneratePaths(context.Background(), StyleCrayon, 5, 800, 600); err == nil {
		t.Fatalf("expected error from client")
	}
}

func TestParseStyle(t *testing.T) {
	for _, s := range Styles() {
		if _, err := ParseStyle(string(s)); err != nil {
			t.Fatalf("ParseStyle(%q): %v", s, err)
		}
	}
	if _, err := ParseStyle("glitter"); !errors.Is(err, ErrUnknownStyle) {
		t.Fatalf("expected ErrUnknownStyle, got %v", err)
	}
}
