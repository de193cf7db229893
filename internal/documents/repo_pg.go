package documents

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements DocumentsRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, user_id, original_file_key, file_name, file_type, scribble_style, intensity, caption, processed_file_key, page_count, created_at`

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    user_id,
    original_file_key,
    file_name,
    file_type,
    scribble_style,
    intensity,
    caption,
    processed_file_key,
    page_count,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	var userID sql.NullString
	if doc.UserID != "" {
		userID = sql.NullString{String: doc.UserID, Valid: true}
	}
	var caption sql.NullString
	if doc.Caption != "" {
		caption = sql.NullString{String: doc.Caption, Valid: true}
	}
	var processedKey sql.NullString
	if doc.ProcessedFileKey != "" {
		processedKey = sql.NullString{String: doc.ProcessedFileKey, Valid: true}
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		userID,
		doc.OriginalFileKey,
		doc.FileName,
		doc.FileType,
		doc.ScribbleStyle,
		doc.Intensity,
		caption,
		processedKey,
		doc.PageCount,
		doc.CreatedAt,
	)
	return err
}

// GetByID fetches a document by ID.
func (r *PGRepo) GetByID(ctx context.Context, documentID string) (Document, error) {
	const query = `
SELECT ` + documentColumns + `
FROM documents
WHERE id = $1
LIMIT 1`

	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, documentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// ListByUser lists the user's documents, newest first, up to limit.
func (r *PGRepo) ListByUser(ctx context.Context, userId string, limit int) ([]Document, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	const query = `
SELECT ` + documentColumns + `
FROM documents
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2`

	rows, err := r.DB.QueryContext(ctx, query, userId, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// AttachProcessed records the processed file key for a document.
func (r *PGRepo) AttachProcessed(ctx context.Context, documentID, processedFileKey string) error {
	const query = `
UPDATE documents
SET processed_file_key = $2
WHERE id = $1`

	res, err := r.DB.ExecContext(ctx, query, documentID, processedFileKey)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var userID sql.NullString
	var caption sql.NullString
	var processedKey sql.NullString
	if err := row.Scan(
		&doc.ID,
		&userID,
		&doc.OriginalFileKey,
		&doc.FileName,
		&doc.FileType,
		&doc.ScribbleStyle,
		&doc.Intensity,
		&caption,
		&processedKey,
		&doc.PageCount,
		&doc.CreatedAt,
	); err != nil {
		return Document{}, err
	}
	if userID.Valid {
		doc.UserID = userID.String
	}
	if caption.Valid {
		doc.Caption = caption.String
	}
	if processedKey.Valid {
		doc.ProcessedFileKey = processedKey.String
	}
	return doc, nil
}

var _ DocumentsRepo = (*PGRepo)(nil)
