// Package storage provides the blob store used for user-uploaded media.
package storage

import "context"

// BlobStore abstracts an object store holding public media files.
type BlobStore interface {
	// Upload writes data under key with the given content type.
	Upload(ctx context.Context, key string, data []byte, contentType string) error

	// List returns the keys under the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Remove deletes the given keys. Missing keys are not an error.
	Remove(ctx context.Context, keys []string) error

	// PublicURL returns the public download URL for a key.
	PublicURL(key string) string
}
