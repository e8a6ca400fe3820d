// Package storage provides the blob sinks that attachment exports are
// written through.
package storage

import "context"

// BlobSink writes materialized attachment files to addressable storage
// outside the record store.
type BlobSink interface {
	EnsureDirectory(ctx context.Context, dir string) error
	WriteFile(ctx context.Context, path string, data []byte, contentType string) error
}
