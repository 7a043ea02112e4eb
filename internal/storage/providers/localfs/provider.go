// Package localfs implements media.StorageProvider on the local filesystem.
// Objects live under <dataRoot>/media/<key> and are published under
// <baseURL>/<key>.
package localfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Provider stores media objects below a data root directory.
type Provider struct {
	dataRoot string
	baseURL  string
}

// New creates a filesystem storage provider.
// dataRoot is the host directory that holds the media tree (e.g. "data").
func New(dataRoot, baseURL string) (*Provider, error) {
	abs, err := filepath.Abs(dataRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve data root: %w", err)
	}
	return &Provider{dataRoot: abs, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Put writes data to a temporary file next to the host path for key and
// renames it into place, so readers never observe a partial object.
func (p *Provider) Put(_ context.Context, key string, reader io.Reader) (err error) {
	dest, err := p.hostPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	f, err := os.CreateTemp(filepath.Dir(dest), ".put-*")
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()
	if _, err := io.Copy(f, reader); err != nil {
		_ = f.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		return fmt.Errorf("chmod file: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return fmt.Errorf("rename file: %w", err)
	}
	return nil
}

// Open reads the object stored under key.
func (p *Provider) Open(_ context.Context, key string) (io.ReadCloser, error) {
	dest, err := p.hostPath(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(dest)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

// Delete removes the object stored under key. Missing objects are ignored.
func (p *Provider) Delete(_ context.Context, key string) error {
	dest, err := p.hostPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// AccessPath returns the public URL for a storage key.
func (p *Provider) AccessPath(key string) string {
	return p.baseURL + "/" + strings.TrimLeft(filepath.ToSlash(filepath.Clean(key)), "/")
}

// Ping checks that the media root exists and is writable.
func (p *Provider) Ping(_ context.Context) error {
	root := filepath.Join(p.dataRoot, "media")
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create media root: %w", err)
	}
	f, err := os.CreateTemp(root, ".ping-*")
	if err != nil {
		return fmt.Errorf("media root not writable: %w", err)
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

// hostPath converts a storage key into the host-side file path.
func (p *Provider) hostPath(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("invalid storage key: %q", key)
	}
	clean := filepath.Clean(key)
	if filepath.IsAbs(clean) {
		return "", fmt.Errorf("absolute key is forbidden: %s", key)
	}
	if strings.HasPrefix(clean, ".."+string(filepath.Separator)) || clean == ".." {
		return "", fmt.Errorf("path traversal is forbidden: %s", key)
	}
	root := filepath.Join(p.dataRoot, "media")
	joined := filepath.Join(root, clean)
	if !strings.HasPrefix(joined, root+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes data root: %s", key)
	}
	return joined, nil
}
