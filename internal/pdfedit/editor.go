package pdfedit

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// OverlayScribbles stamps one PNG scribble image onto each page of the PDF,
// full page, in page order. One scribble per page is required.
func OverlayScribbles(pdfData []byte, scribbles [][]byte) ([]byte, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pageCount, err := api.PageCount(bytes.NewReader(pdfData), conf)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	if pageCount != len(scribbles) {
		return nil, fmt.Errorf("pdf has %d pages but %d scribbles were provided", pageCount, len(scribbles))
	}

	watermarks := make(map[int]*model.Watermark, pageCount)
	for i, scribble := range scribbles {
		wm, err := api.ImageWatermarkForReader(bytes.NewReader(scribble), "pos:c, scale:1 abs, rot:0", true, false, types.POINTS)
		if err != nil {
			return nil, fmt.Errorf("scribble %d: %w", i, err)
		}
		watermarks[i+1] = wm
	}

	var out bytes.Buffer
	if err := api.AddWatermarksMap(bytes.NewReader(pdfData), &out, watermarks, conf); err != nil {
		return nil, fmt.Errorf("overlay scribbles: %w", err)
	}
	return out.Bytes(), nil
}
