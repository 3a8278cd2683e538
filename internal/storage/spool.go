package storage

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
)

// Spool copies a multipart upload to a temporary file in dir and describes
// it as a File ready for Gateway.Upload. The caller owns the temp file until
// it is handed to Upload; on error nothing is left behind.
func Spool(fh *multipart.FileHeader, dir string) (File, error) {
	src, err := fh.Open()
	if err != nil {
		return File{}, fmt.Errorf("open multipart file: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(dir, "upload-*"+strings.ToLower(filepath.Ext(fh.Filename)))
	if err != nil {
		return File{}, fmt.Errorf("create temp file: %w", err)
	}

	n, err := io.Copy(tmp, src)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return File{}, fmt.Errorf("write temp file: %w", err)
	}

	return File{
		Path:        tmp.Name(),
		Filename:    fh.Filename,
		ContentType: detectType(fh),
		Size:        n,
	}, nil
}

// Discard removes a spooled file that will not be uploaded.
func Discard(f File) {
	if f.Path != "" {
		os.Remove(f.Path)
	}
}

func detectType(fh *multipart.FileHeader) string {
	if ct := normalizeType(fh.Header.Get("Content-Type")); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(fh.Filename))); ct != "" {
		return normalizeType(ct)
	}
	return "application/octet-stream"
}
