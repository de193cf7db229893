package minio

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"toddlerdoc-backend/internal/shared/storage/object"
	"toddlerdoc-backend/internal/shared/util"
)

// Store implements ObjectStore against a MinIO (or any S3-compatible) server.
type Store struct {
	client *minio.Client
	bucket string
}

// New connects to the MinIO server and ensures the bucket exists.
func New(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (object.ObjectStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
		}
	}

	return &Store{client: client, bucket: bucket}, nil
}

// Save uploads the reader contents under the user's namespace.
func (s *Store) Save(ctx context.Context, userId string, fileName string, r io.Reader) (string, int64, string, error) {
	sanitizedName, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", 0, "", fmt.Errorf("sanitize file name: %w", err)
	}

	storageUserKey := util.HashUserKey(userId)

	if err := ctx.Err(); err != nil {
		return "", 0, "", err
	}

	finalName := fmt.Sprintf("%s_%s", randomID(), sanitizedName)
	storageKey := path.Join(storageUserKey, finalName)

	var sniff [512]byte
	n, readErr := io.ReadFull(r, sniff[:])
	if readErr != nil && readErr != io.EOF && readErr != io.ErrUnexpectedEOF {
		return "", 0, "", fmt.Errorf("read sniff: %w", readErr)
	}

	mimeType := http.DetectContentType(sniff[:n])
	body := io.MultiReader(bytes.NewReader(sniff[:n]), r)

	info, err := s.client.PutObject(ctx, s.bucket, storageKey, body, -1, minio.PutObjectOptions{
		ContentType: mimeType,
	})
	if err != nil {
		return "", 0, "", fmt.Errorf("minio put bucket=%s key=%s: %w", s.bucket, storageKey, err)
	}

	return storageKey, info.Size, mimeType, nil
}

// Open retrieves a stored object for reading.
func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, storageKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("minio get bucket=%s key=%s: %w", s.bucket, storageKey, err)
	}
	return obj, nil
}

// SaveWithKey uploads data at a specific storage key.
func (s *Store) SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	info, err := s.client.PutObject(ctx, s.bucket, storageKey, r, -1, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return 0, fmt.Errorf("minio put bucket=%s key=%s: %w", s.bucket, storageKey, err)
	}
	return info.Size, nil
}

// PresignPut returns a presigned PUT URL so clients can upload directly.
func (s *Store) PresignPut(ctx context.Context, storageKey string, contentType string, expiry time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	u, err := s.client.PresignedPutObject(ctx, s.bucket, storageKey, expiry)
	if err != nil {
		return "", fmt.Errorf("minio presign put bucket=%s key=%s: %w", s.bucket, storageKey, err)
	}
	return u.String(), nil
}

// ResolveURL returns a presigned GET URL for an existing object.
func (s *Store) ResolveURL(ctx context.Context, storageKey string, expiry time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if _, err := s.client.StatObject(ctx, s.bucket, storageKey, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return "", object.ErrObjectNotFound
		}
		return "", fmt.Errorf("minio stat bucket=%s key=%s: %w", s.bucket, storageKey, err)
	}

	u, err := s.client.PresignedGetObject(ctx, s.bucket, storageKey, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("minio presign get bucket=%s key=%s: %w", s.bucket, storageKey, err)
	}
	return u.String(), nil
}

func randomID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}

var _ object.ObjectStore = (*Store)(nil)
