package pdfedit

import (
	"encoding/base64"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"toddlerdoc-backend/internal/shared/telemetry"
)

// NewRouter builds the standalone PDF editing server. It is intentionally
// plain: one POST /upload route that reads a PDF from disk, overlays the
// supplied scribble images, and writes the result next to the original.
func NewRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = 10 << 20
	r.POST("/upload", handleUpload)
	return r
}

type uploadRequest struct {
	FilePath  string   `json:"filePath"`
	Scribbles []string `json:"scribbles"` // base64-encoded PNGs, one per page
}

func handleUpload(c *gin.Context) {
	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to edit PDF"})
		return
	}

	pdfData, err := os.ReadFile(req.FilePath)
	if err != nil {
		telemetry.Error("pdfedit.read_failed", map[string]any{
			"path":  req.FilePath,
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to edit PDF"})
		return
	}

	scribbles, err := decodeScribbles(req.Scribbles)
	if err != nil {
		telemetry.Error("pdfedit.decode_failed", map[string]any{
			"path":  req.FilePath,
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to edit PDF"})
		return
	}

	edited, err := OverlayScribbles(pdfData, scribbles)
	if err != nil {
		telemetry.Error("pdfedit.overlay_failed", map[string]any{
			"path":  req.FilePath,
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to edit PDF"})
		return
	}

	outputPath := editedPath(req.FilePath)
	if err := os.WriteFile(outputPath, edited, 0o644); err != nil {
		telemetry.Error("pdfedit.write_failed", map[string]any{
			"path":  outputPath,
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to edit PDF"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "PDF edited successfully",
		"path":    outputPath,
	})
}

func decodeScribbles(encoded []string) ([][]byte, error) {
	out := make([][]byte, 0, len(encoded))
	for _, s := range encoded {
		// Tolerate data-URL prefixes from canvas exports.
		if idx := strings.Index(s, ","); idx != -1 && strings.HasPrefix(s, "data:") {
			s = s[idx+1:]
		}
		data, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}

func editedPath(original string) string {
	if strings.HasSuffix(original, ".pdf") {
		return strings.TrimSuffix(original, ".pdf") + "_edited.pdf"
	}
	return original + "_edited.pdf"
}
