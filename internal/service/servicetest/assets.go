package servicetest

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/rajbhoyar729/LokDarpan/internal/storage"
)

// ErrUploadFailed is returned by Assets.Upload while FailUploads is set.
var ErrUploadFailed = errors.New("upload failed")

// Assets is a storage gateway over a MemoryBackend that records deletes.
type Assets struct {
	*storage.Gateway
	Backend *storage.MemoryBackend

	mu      sync.Mutex
	deleted []string
	uploads int
	// FailUploadAfter makes every upload after the first n fail. Negative
	// disables it.
	FailUploadAfter int
}

func NewAssets() *Assets {
	b := storage.NewMemoryBackend("test-bucket")
	return &Assets{
		Gateway:         storage.NewGateway(b, zerolog.Nop()),
		Backend:         b,
		FailUploadAfter: -1,
	}
}

func (a *Assets) Upload(ctx context.Context, f storage.File, category storage.Category) (storage.Object, error) {
	a.mu.Lock()
	a.uploads++
	fail := a.FailUploadAfter >= 0 && a.uploads > a.FailUploadAfter
	a.mu.Unlock()
	if fail {
		os.Remove(f.Path)
		return storage.Object{}, ErrUploadFailed
	}
	return a.Gateway.Upload(ctx, f, category)
}

func (a *Assets) Delete(ctx context.Context, keyOrURL string) {
	a.mu.Lock()
	a.deleted = append(a.deleted, keyOrURL)
	a.mu.Unlock()
	a.Gateway.Delete(ctx, keyOrURL)
}

// Deleted returns every key Delete was called with, in order.
func (a *Assets) Deleted() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.deleted...)
}

// PutObject stores an object directly, as a client with a presigned URL
// would.
func (a *Assets) PutObject(t testing.TB, key, contentType string, data []byte) {
	t.Helper()
	if err := a.Backend.Put(context.Background(), key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		t.Fatalf("put %s: %v", key, err)
	}
}

// TempFile writes data to a temp file and describes it as an upload.
func TempFile(t testing.TB, name, contentType string, data []byte) storage.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return storage.File{Path: path, Filename: name, ContentType: contentType, Size: int64(len(data))}
}

// Exists reports whether path is still on disk.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
