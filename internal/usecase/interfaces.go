package usecase

import (
	"context"
	"io"
)

// FileUploader is the blob-store boundary: upload bytes under a
// caller-assigned object name, get back a stable retrieval URL.
type FileUploader interface {
	Upload(ctx context.Context, objectName, contentType string, content io.Reader) (string, error)
}

// Presence answers whether a user currently has a live session.
type Presence interface {
	IsOnline(ctx context.Context, userID string) bool
}
