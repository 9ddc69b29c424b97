package storage

import (
	"context"
	"io"
)

// UploadResult describes a stored object. Location is the public URL the
// site fetches published standings from.
type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader is the object store behind StandingsPublisher: it holds the
// standings/<eventId>.json documents of championship hubs.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)
	// Delete removes key; a missing object is not an error.
	Delete(ctx context.Context, key string) error
	GetPublicURL(key string) string
}
