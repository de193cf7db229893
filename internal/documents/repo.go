package documents

import "context"

// DocumentsRepo defines persistence operations for documents.
type DocumentsRepo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, documentID string) (Document, error)
	ListByUser(ctx context.Context, userId string, limit int) ([]Document, error)
	AttachProcessed(ctx context.Context, documentID, processedFileKey string) error
}
