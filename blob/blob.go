// Package blob is the Blob Store collaborator: upload bytes, resolve a
// public URL. Profile images land here before any database row references
// them.
package blob

import "context"

type Store interface {
	Upload(ctx context.Context, bucket, path string, data []byte, contentType string) error
	PublicURL(bucket, path string) string
}
