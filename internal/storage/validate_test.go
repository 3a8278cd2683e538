package storage

import (
	"testing"

	"github.com/rajbhoyar729/LokDarpan/internal/apperr"
)

func TestRuleCheck(t *testing.T) {
	tests := []struct {
		name        string
		rule        Rule
		contentType string
		size        int64
		wantErr     bool
	}{
		{"mp4 ok", VideoRule, "video/mp4", 1 << 20, false},
		{"quicktime ok", VideoRule, "video/quicktime", 1, false},
		{"content type params ignored", VideoRule, "video/webm; codecs=vp9", 1, false},
		{"video at limit", VideoRule, "video/mp4", 500 << 20, false},
		{"video over limit", VideoRule, "video/mp4", 500<<20 + 1, true},
		{"video wrong type", VideoRule, "video/x-msvideo", 1, true},
		{"empty video", VideoRule, "video/mp4", 0, true},
		{"png ok", ImageRule, "image/png", 1 << 10, false},
		{"jpg alias ok", ImageRule, "image/jpg", 1 << 10, false},
		{"image over limit", ImageRule, "image/jpeg", 10<<20 + 1, true},
		{"gif rejected", ImageRule, "image/gif", 1, true},
		{"uppercase type", ImageRule, "IMAGE/WEBP", 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Check(tt.contentType, tt.size)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got none")
				}
				if !apperr.Is(err, apperr.KindValidation) {
					t.Errorf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
