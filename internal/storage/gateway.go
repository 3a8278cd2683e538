// Package storage uploads and deletes binary assets (videos, thumbnails,
// channel logos) in an object store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Category is the top-level folder an asset is stored under.
type Category string

const (
	CategoryVideos     Category = "videos"
	CategoryThumbnails Category = "thumbnails"
	CategoryLogos      Category = "logos"
)

// File is a local temporary file waiting to be uploaded.
type File struct {
	Path        string
	Filename    string
	ContentType string
	Size        int64
}

// ObjectInfo describes an object already in the store.
type ObjectInfo struct {
	Size        int64
	ContentType string
}

// ErrObjectNotFound is returned by Stat when the key is absent.
var ErrObjectNotFound = errors.New("object not found")

// Object identifies a stored asset.
type Object struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// Backend is the object store API the gateway needs. S3Backend,
// MinioBackend and MemoryBackend implement it.
type Backend interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
	URL(key string) string
	Bucket() string
}

// Gateway names, uploads and deletes assets on top of a Backend.
type Gateway struct {
	backend Backend
	logger  zerolog.Logger
	newID   func() string
}

func NewGateway(backend Backend, logger zerolog.Logger) *Gateway {
	return &Gateway{
		backend: backend,
		logger:  logger.With().Str("component", "storage").Logger(),
		newID:   uuid.NewString,
	}
}

// Upload streams f to the store under "<category>/<random><ext>" and
// returns its public URL and key. The local file is removed whether or not
// the upload succeeds.
func (g *Gateway) Upload(ctx context.Context, f File, category Category) (Object, error) {
	defer func() {
		if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
			g.logger.Warn().Err(err).Str("path", f.Path).Msg("remove temp file")
		}
	}()

	fh, err := os.Open(f.Path)
	if err != nil {
		return Object{}, fmt.Errorf("open upload: %w", err)
	}
	defer fh.Close()

	size := f.Size
	if size <= 0 {
		if st, err := fh.Stat(); err == nil {
			size = st.Size()
		}
	}

	key := g.NewKey(category, f.Filename, f.ContentType)
	if err := g.backend.Put(ctx, key, fh, size, f.ContentType); err != nil {
		return Object{}, fmt.Errorf("upload %s: %w", key, err)
	}

	g.logger.Info().Str("key", key).Int64("size", size).Msg("asset uploaded")
	return Object{URL: g.backend.URL(key), Key: key}, nil
}

// Delete removes an asset. It never fails: an empty key is ignored, a full
// URL is reduced to its key, and store errors are only logged.
func (g *Gateway) Delete(ctx context.Context, keyOrURL string) {
	key := g.KeyFromURL(keyOrURL)
	if key == "" {
		g.logger.Warn().Msg("delete called with empty key")
		return
	}
	if err := g.backend.Delete(ctx, key); err != nil {
		g.logger.Error().Err(err).Str("key", key).Msg("asset delete failed")
		return
	}
	g.logger.Info().Str("key", key).Msg("asset deleted")
}

// PresignUpload reserves a key for a client-side upload and returns it
// together with a presigned PUT URL valid for ttl.
func (g *Gateway) PresignUpload(ctx context.Context, category Category, filename, contentType string, ttl time.Duration) (Object, string, error) {
	key := g.NewKey(category, filename, contentType)
	uploadURL, err := g.backend.PresignPut(ctx, key, contentType, ttl)
	if err != nil {
		return Object{}, "", fmt.Errorf("presign %s: %w", key, err)
	}
	return Object{URL: g.backend.URL(key), Key: key}, uploadURL, nil
}

// Stat returns the stored size and content type of key, or
// ErrObjectNotFound.
func (g *Gateway) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	return g.backend.Stat(ctx, key)
}

// NewKey builds a unique key under category, keeping the extension of
// filename or deriving one from contentType.
func (g *Gateway) NewKey(category Category, filename, contentType string) string {
	return string(category) + "/" + g.newID() + extension(filename, contentType)
}

// KeyFromURL returns the object key for a stored asset URL. Values that are
// not http(s) URLs are returned unchanged.
func (g *Gateway) KeyFromURL(keyOrURL string) string {
	s := strings.TrimSpace(keyOrURL)
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return s
	}
	u, err := url.Parse(s)
	if err != nil {
		return s
	}
	key := strings.TrimPrefix(u.Path, "/")
	// Path-style URLs carry the bucket as the first segment.
	return strings.TrimPrefix(key, g.backend.Bucket()+"/")
}

func extension(filename, contentType string) string {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		return ext
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
