package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Dir writes artifacts into a local directory, replacing files atomically.
type Dir struct {
	root string
}

// NewDir returns a filesystem sink rooted at root ("" means the working directory).
func NewDir(root string) (*Dir, error) {
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve export dir: %w", err)
	}
	return &Dir{root: abs}, nil
}

// Root returns the absolute directory artifacts are written to.
func (d *Dir) Root() string {
	return d.root
}

// Driver implements Sink.
func (d *Dir) Driver() Driver { return DriverFilesystem }

// Put implements Sink.
func (d *Dir) Put(ctx context.Context, id, name string, payload []byte, contentType string) (Artifact, error) {
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}
	if name == "" || filepath.Base(name) != name {
		return Artifact{}, fmt.Errorf("invalid artifact name %q", name)
	}
	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return Artifact{}, fmt.Errorf("failed to create export dir: %w", err)
	}
	path := filepath.Join(d.root, name)
	tmpFile, err := os.CreateTemp(d.root, "."+name+"-*")
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(payload); err != nil {
		return Artifact{}, fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmpFile.Close(); err != nil {
		return Artifact{}, fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return Artifact{}, fmt.Errorf("failed to set permissions on %s: %w", name, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return Artifact{}, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return Artifact{
		ID:          id,
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(payload)),
		Location:    path,
		CreatedAt:   time.Now(),
	}, nil
}
