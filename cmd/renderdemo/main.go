package main

// Renders the procedural fallback scribbles for each style to PNG files,
// useful for eyeballing stroke widths and palettes without running the API.

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"toddlerdoc-backend/internal/canvas"
	"toddlerdoc-backend/internal/llm"
	"toddlerdoc-backend/internal/scribbles"
)

// garbageClient returns non-JSON output so path generation always takes the
// procedural fallback branch.
type garbageClient struct{}

func (garbageClient) Complete(ctx context.Context, req llm.Request) (string, error) {
	return "scribble scribble", nil
}

func main() {
	outDir := flag.String("out", "./out", "output directory for demo PNGs")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir failed: %v\n", err)
		os.Exit(1)
	}

	svc := scribbles.NewService(garbageClient{})
	for _, style := range scribbles.Styles() {
		path := filepath.Join(*outDir, fmt.Sprintf("demo_%s.png", style))
		if err := renderDemo(svc, style, path); err != nil {
			fmt.Fprintf(os.Stderr, "render %s failed: %v\n", style, err)
			os.Exit(1)
		}
		fmt.Printf("OK: wrote %s\n", path)
	}
}

func renderDemo(svc *scribbles.Service, style scribbles.Style, outPath string) error {
	result, err := svc.GeneratePaths(context.Background(), style, 5, canvas.CanvasWidth, canvas.CanvasHeight)
	if err != nil {
		return err
	}

	session := canvas.NewSession("demo", "demo.png", style, nil, false, scribbles.FallbackCaption)
	session.SetStagger(0)

	strokes := make([]canvas.Stroke, 0, len(result.Paths))
	for _, p := range result.Paths {
		commands, err := canvas.ParsePath(p.Path)
		if err != nil {
			return err
		}
		color := p.Color
		if color == "" {
			color = canvas.RandomColor(style)
		}
		strokes = append(strokes, canvas.Stroke{
			Commands: commands,
			Color:    color,
			Width:    style.StrokeWidth(),
		})
	}
	session.AddStrokes(strokes)
	waitForStrokes(session, len(strokes))

	data, err := canvas.EncodePNG(session)
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, data, 0o644)
}

func waitForStrokes(session *canvas.Session, want int) {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(session.Strokes()) >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
}
