// Package blob is the artifact-store boundary: QR images and student photos
// are written through it and referenced by URL or path on the student record.
package blob

import "context"

// Store persists binary artifacts under stable keys. Putting the same key
// twice replaces the artifact.
type Store interface {
	// Put stores data under key (e.g. "S01.png") and returns a stable
	// reference for the student record.
	Put(ctx context.Context, key string, data []byte) (string, error)
	// Delete removes the artifact. Missing artifacts are not an error.
	Delete(ctx context.Context, key string) error
}
