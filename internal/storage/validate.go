package storage

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rajbhoyar729/LokDarpan/internal/apperr"
)

// Rule is an allow-list of MIME types plus a size limit for one kind of
// upload.
type Rule struct {
	Label     string
	MaxBytes  int64
	MIMETypes map[string]bool
}

var (
	VideoRule = Rule{
		Label:    "video",
		MaxBytes: 500 << 20,
		MIMETypes: map[string]bool{
			"video/mp4":       true,
			"video/webm":      true,
			"video/ogg":       true,
			"video/quicktime": true,
		},
	}

	ImageRule = Rule{
		Label:    "image",
		MaxBytes: 10 << 20,
		MIMETypes: map[string]bool{
			"image/jpeg": true,
			"image/jpg":  true,
			"image/png":  true,
			"image/webp": true,
		},
	}
)

// CheckType validates a declared content type only.
func (r Rule) CheckType(contentType string) error {
	ct := normalizeType(contentType)
	if !r.MIMETypes[ct] {
		return apperr.Validationf("Invalid %s type %q. Allowed types: %s", r.Label, ct, r.allowed())
	}
	return nil
}

// Check validates a content type and size.
func (r Rule) Check(contentType string, size int64) error {
	if err := r.CheckType(contentType); err != nil {
		return err
	}
	if size <= 0 {
		return apperr.Validationf("Empty %s file", r.Label)
	}
	if size > r.MaxBytes {
		return apperr.Validationf("%s file too large: maximum size is %dMB", capitalize(r.Label), r.MaxBytes>>20)
	}
	return nil
}

func (r Rule) allowed() string {
	types := make([]string, 0, len(r.MIMETypes))
	for t := range r.MIMETypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return strings.Join(types, ", ")
}

func normalizeType(contentType string) string {
	ct, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(ct))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return fmt.Sprintf("%s%s", strings.ToUpper(s[:1]), s[1:])
}
