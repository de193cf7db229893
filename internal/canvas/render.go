package canvas

import (
	"bytes"
	"image"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"toddlerdoc-backend/internal/shared/metrics"
)

// Layout constants for the document area inside the canvas.
const (
	docAreaX      = 50
	docAreaY      = 50
	docAreaWidth  = 700
	docAreaHeight = 500
)

// DecodeBaseImage decodes an uploaded image so it can be drawn under the
// scribbles. The bytes come straight out of object storage.
func DecodeBaseImage(data []byte) (image.Image, error) {
	return imaging.Decode(bytes.NewReader(data))
}

// Render rasterizes the session to an 800x600 PNG-ready image: white
// background, the document (or a PDF placeholder) fitted into the document
// area, then every stroke in insertion order, then the caption.
func Render(s *Session) image.Image {
	return renderContext(s).Image()
}

func renderContext(s *Session) *gg.Context {
	start := time.Now()
	base, isPDF, caption, strokes := s.snapshot()

	dc := gg.NewContext(CanvasWidth, CanvasHeight)
	dc.SetHexColor("#FFFFFF")
	dc.Clear()

	switch {
	case isPDF:
		drawPDFPlaceholder(dc, s.FileName)
	case base != nil:
		drawBaseImage(dc, base)
	}

	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	for _, stroke := range strokes {
		drawStroke(dc, stroke)
	}

	if caption != "" {
		drawCaption(dc, caption)
	}

	metrics.ObserveCanvasRenderMs(float64(time.Since(start)) / float64(time.Millisecond))
	return dc
}

func drawBaseImage(dc *gg.Context, base image.Image) {
	fitted := imaging.Fit(base, docAreaWidth, docAreaHeight, imaging.Lanczos)
	bounds := fitted.Bounds()
	x := docAreaX + (docAreaWidth-bounds.Dx())/2
	y := docAreaY + (docAreaHeight-bounds.Dy())/2
	dc.DrawImage(fitted, x, y)
}

func drawPDFPlaceholder(dc *gg.Context, fileName string) {
	dc.SetHexColor("#F5F5F5")
	dc.DrawRectangle(docAreaX, docAreaY, docAreaWidth, docAreaHeight)
	dc.Fill()

	dc.SetHexColor("#DDDDDD")
	dc.SetLineWidth(2)
	dc.DrawRectangle(docAreaX, docAreaY, docAreaWidth, docAreaHeight)
	dc.Stroke()

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetHexColor("#999999")
	dc.DrawStringAnchored("PDF Document", CanvasWidth/2, CanvasHeight/2-10, 0.5, 0.5)
	if fileName != "" {
		dc.SetHexColor("#333333")
		dc.DrawStringAnchored(fileName, CanvasWidth/2, CanvasHeight/2+10, 0.5, 0.5)
	}
}

func drawStroke(dc *gg.Context, stroke Stroke) {
	dc.SetHexColor(stroke.Color)
	dc.SetLineWidth(stroke.Width)

	for _, cmd := range stroke.Commands {
		switch cmd.Op {
		case 'M':
			dc.MoveTo(cmd.Pts[0].X, cmd.Pts[0].Y)
		case 'L':
			dc.LineTo(cmd.Pts[0].X, cmd.Pts[0].Y)
		case 'Q':
			dc.QuadraticTo(cmd.Pts[0].X, cmd.Pts[0].Y, cmd.Pts[1].X, cmd.Pts[1].Y)
		case 'C':
			dc.CubicTo(cmd.Pts[0].X, cmd.Pts[0].Y, cmd.Pts[1].X, cmd.Pts[1].Y, cmd.Pts[2].X, cmd.Pts[2].Y)
		case 'Z':
			dc.ClosePath()
		}
	}
	dc.Stroke()
}

func drawCaption(dc *gg.Context, caption string) {
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetHexColor("#333333")
	dc.DrawStringAnchored(caption, CanvasWidth/2, CanvasHeight-20, 0.5, 0.5)
}

// EncodePNG renders the session and encodes it as PNG bytes.
func EncodePNG(s *Session) ([]byte, error) {
	var buf bytes.Buffer
	if err := renderContext(s).EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
