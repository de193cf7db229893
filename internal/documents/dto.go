package documents

import "time"

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	DocumentID    string    `json:"documentId"`
	FileName      string    `json:"fileName"`
	FileType      string    `json:"fileType"`
	ScribbleStyle string    `json:"scribbleStyle"`
	Intensity     float64   `json:"intensity"`
	Caption       string    `json:"caption,omitempty"`
	PageCount     int       `json:"pageCount"`
	CreatedAt     time.Time `json:"createdAt"`
	OriginalURL   string    `json:"originalUrl,omitempty"`
	ProcessedURL  string    `json:"processedUrl,omitempty"`
}

func toResponse(doc DocumentWithURLs) DocumentResponse {
	return DocumentResponse{
		DocumentID:    doc.ID,
		FileName:      doc.FileName,
		FileType:      doc.FileType,
		ScribbleStyle: doc.ScribbleStyle,
		Intensity:     doc.Intensity,
		Caption:       doc.Caption,
		PageCount:     doc.PageCount,
		CreatedAt:     doc.CreatedAt,
		OriginalURL:   doc.OriginalURL,
		ProcessedURL:  doc.ProcessedURL,
	}
}
