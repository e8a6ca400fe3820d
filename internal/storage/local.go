package storage

import (
	"context"
	"os"
	"path/filepath"
)

// LocalSink writes files under a base directory on the local filesystem.
type LocalSink struct {
	baseDir string
}

func NewLocalSink(baseDir string) *LocalSink {
	return &LocalSink{baseDir: baseDir}
}

func (s *LocalSink) EnsureDirectory(_ context.Context, dir string) error {
	return os.MkdirAll(filepath.Join(s.baseDir, dir), 0o755)
}

func (s *LocalSink) WriteFile(_ context.Context, path string, data []byte, _ string) error {
	return os.WriteFile(filepath.Join(s.baseDir, path), data, 0o644)
}
