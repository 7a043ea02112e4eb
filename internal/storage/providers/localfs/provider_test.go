package localfs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestProvider_HostPath(t *testing.T) {
	t.Parallel()
	p := &Provider{dataRoot: "/srv/data", baseURL: "https://cdn.example.com/media"}

	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{key: "7/ab12/ab12cd.png", want: "/srv/data/media/7/ab12/ab12cd.png"},
		{key: "/absolute/path", wantErr: true},
		{key: "../escape", wantErr: true},
		{key: "7/../../escape", wantErr: true},
		{key: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := p.hostPath(tt.key)
		if tt.wantErr {
			if err == nil {
				t.Errorf("hostPath(%q) expected error", tt.key)
			}
			continue
		}
		if err != nil {
			t.Errorf("hostPath(%q) unexpected error: %v", tt.key, err)
			continue
		}
		if got != tt.want {
			t.Errorf("hostPath(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestProvider_AccessPath(t *testing.T) {
	t.Parallel()
	p, err := New(t.TempDir(), "https://cdn.example.com/media/")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	tests := []struct {
		key  string
		want string
	}{
		{key: "7/ab12/ab12cd.png", want: "https://cdn.example.com/media/7/ab12/ab12cd.png"},
		{key: "7/ab12/ab12cd-150x150.jpg", want: "https://cdn.example.com/media/7/ab12/ab12cd-150x150.jpg"},
	}
	for _, tt := range tests {
		if got := p.AccessPath(tt.key); got != tt.want {
			t.Errorf("AccessPath(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestProvider_PutOpenDelete(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	p, err := New(tmpDir, "http://localhost/media")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	key := "7/ab/test.png"
	data := []byte("hello media content")

	if err := p.Put(context.Background(), key, bytes.NewReader(data)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	hostFile := filepath.Join(tmpDir, "media", "7", "ab", "test.png")
	if _, err := os.Stat(hostFile); err != nil {
		t.Fatalf("expected file at %s: %v", hostFile, err)
	}

	rc, err := p.Open(context.Background(), key)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	got, _ := io.ReadAll(rc)
	rc.Close()
	if !bytes.Equal(got, data) {
		t.Fatalf("content mismatch: got %q", got)
	}

	if err := p.Delete(context.Background(), key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(hostFile); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, stat err=%v", err)
	}
	if err := p.Delete(context.Background(), key); err != nil {
		t.Fatalf("second Delete should be a no-op, got %v", err)
	}
}

func TestProvider_Ping(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	p, err := New(root, "http://x")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := p.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	entries, err := os.ReadDir(filepath.Join(root, "media"))
	if err != nil {
		t.Fatalf("read media root: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("ping left %d files behind", len(entries))
	}
}

type failingReader struct {
	prefix []byte
	read   bool
}

func (r *failingReader) Read(b []byte) (int, error) {
	if !r.read {
		r.read = true
		return copy(b, r.prefix), nil
	}
	return 0, errors.New("connection reset")
}

func TestProvider_PutFailureKeepsPreviousObject(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	p, err := New(root, "http://x")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	key := "7/ab/avatar.png"
	if err := p.Put(context.Background(), key, bytes.NewReader([]byte("first"))); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	err = p.Put(context.Background(), key, &failingReader{prefix: []byte("partial")})
	if err == nil {
		t.Fatalf("expected Put to fail")
	}

	got, err := os.ReadFile(filepath.Join(root, "media", "7", "ab", "avatar.png"))
	if err != nil {
		t.Fatalf("read object: %v", err)
	}
	if string(got) != "first" {
		t.Fatalf("object overwritten by failed Put: %q", got)
	}
	entries, err := os.ReadDir(filepath.Join(root, "media", "7", "ab"))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("failed Put left %d files, want 1", len(entries))
	}
}
