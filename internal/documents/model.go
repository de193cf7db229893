package documents

import "time"

// Document represents an uploaded document that has been (or will be)
// decorated with scribbles. UserID is empty for anonymous uploads.
type Document struct {
	ID               string
	UserID           string
	OriginalFileKey  string
	FileName         string
	FileType         string
	ScribbleStyle    string
	Intensity        float64
	Caption          string
	ProcessedFileKey string
	PageCount        int
	CreatedAt        time.Time
}
