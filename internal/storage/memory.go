package storage

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// MemoryBackend keeps objects in process memory. It backs local development
// (STORAGE_DRIVER=memory) and tests.
type MemoryBackend struct {
	bucket string

	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func NewMemoryBackend(bucket string) *MemoryBackend {
	return &MemoryBackend{
		bucket:  bucket,
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (b *MemoryBackend) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	b.types[key] = contentType
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	delete(b.types, key)
	return nil
}

func (b *MemoryBackend) Stat(_ context.Context, key string) (ObjectInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[key]
	if !ok {
		return ObjectInfo{}, ErrObjectNotFound
	}
	return ObjectInfo{Size: int64(len(data)), ContentType: b.types[key]}, nil
}

func (b *MemoryBackend) PresignPut(_ context.Context, key, _ string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("memory://%s/%s?expires=%d", b.bucket, key, time.Now().Add(ttl).Unix()), nil
}

func (b *MemoryBackend) URL(key string) string {
	return fmt.Sprintf("http://localhost/%s/%s", b.bucket, key)
}

func (b *MemoryBackend) Bucket() string {
	return b.bucket
}

// Object returns the stored bytes for key.
func (b *MemoryBackend) Object(key string) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[key]
	return data, ok
}

// Len returns the number of stored objects.
func (b *MemoryBackend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.objects)
}
