package object

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrObjectNotFound is returned by ResolveURL when the storage key has no object behind it.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore defines the contract for saving, retrieving, and exposing binary objects.
type ObjectStore interface {
	Save(ctx context.Context, userId string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error)
	// PresignPut returns a URL a client can PUT the object body to directly.
	PresignPut(ctx context.Context, storageKey string, contentType string, expiry time.Duration) (string, error)
	// ResolveURL returns a readable URL for an existing object, or ErrObjectNotFound.
	ResolveURL(ctx context.Context, storageKey string, expiry time.Duration) (string, error)
}
