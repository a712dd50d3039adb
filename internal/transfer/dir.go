package transfer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DirSink writes manifests below a local directory. Used for dry runs and
// for partners that pick files up from a mounted share.
type DirSink struct {
	base string
}

func NewDirSink(base string) *DirSink {
	return &DirSink{base: base}
}

func (d *DirSink) Upload(_ context.Context, content []byte, remotePath string) error {
	target := filepath.Join(d.base, filepath.FromSlash(remotePath))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if err := os.WriteFile(target, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}

func (d *DirSink) Close() error { return nil }
