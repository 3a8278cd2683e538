package middleware

import (
	"strings"
	"testing"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"valid", "6f1c2a4e-8b1d-4c53-9a0e-2b7f6d5c4e3a", "6f1c2a4e-8b1d-4c53-9a0e-2b7f6d5c4e3a", false},
		{"uppercase normalized", "6F1C2A4E-8B1D-4C53-9A0E-2B7F6D5C4E3A", "6f1c2a4e-8b1d-4c53-9a0e-2b7f6d5c4e3a", false},
		{"trims whitespace", " 6f1c2a4e-8b1d-4c53-9a0e-2b7f6d5c4e3a ", "6f1c2a4e-8b1d-4c53-9a0e-2b7f6d5c4e3a", false},
		{"empty", "", "", true},
		{"object id", "64b7f0c2e1a3b4c5d6e7f809", "", true},
		{"sql injection", "a'; DROP--", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errMsg := ValidateID("videoId", tt.input)
			if tt.wantErr && errMsg == "" {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && errMsg != "" {
				t.Errorf("unexpected error: %s", errMsg)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateID_MessageNamesField(t *testing.T) {
	_, errMsg := ValidateID("channelId", "nope")
	if !strings.HasPrefix(errMsg, "channelId") {
		t.Errorf("message %q should name the field", errMsg)
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"valid", "alice", "alice", false},
		{"trims", "  bob  ", "bob", false},
		{"too short", "ab", "", true},
		{"exactly 3", "abc", "abc", false},
		{"too long", strings.Repeat("a", 51), "", true},
		{"unicode counted by rune", "लोकदर्पण", "लोकदर्पण", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errMsg := ValidateName(tt.input)
			if tt.wantErr != (errMsg != "") {
				t.Errorf("errMsg = %q, wantErr %v", errMsg, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"A@X.io", "a@x.io", false},
		{" user@example.com ", "user@example.com", false},
		{"", "", true},
		{"no-at-sign", "", true},
		{"two@@x.io", "", true},
		{"missing@tld", "", true},
		{"spa ce@x.io", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, errMsg := ValidateEmail(tt.input)
			if tt.wantErr != (errMsg != "") {
				t.Errorf("errMsg = %q, wantErr %v", errMsg, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"9876543210", "9876543210", false},
		{"+91 98765-43210", "+919876543210", false},
		{"12345", "", true},
		{"1234567890123456", "", true},
		{"98765abc10", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, errMsg := ValidatePhone(tt.input)
			if tt.wantErr != (errMsg != "") {
				t.Errorf("errMsg = %q, wantErr %v", errMsg, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	if ValidatePassword("12345") == "" {
		t.Error("5-char password should be rejected")
	}
	if msg := ValidatePassword("123456"); msg != "" {
		t.Errorf("6-char password rejected: %s", msg)
	}
	if ValidatePassword(strings.Repeat("x", 73)) == "" {
		t.Error("73-byte password should be rejected")
	}
}

func TestValidateTitle(t *testing.T) {
	if _, msg := ValidateTitle("   "); msg == "" {
		t.Error("blank title should be rejected")
	}
	if got, msg := ValidateTitle(strings.Repeat("t", 200)); msg != "" || len(got) != 200 {
		t.Errorf("200-char title rejected: %s", msg)
	}
	if _, msg := ValidateTitle(strings.Repeat("t", 201)); msg == "" {
		t.Error("201-char title should be rejected")
	}
}

func TestValidateDescription(t *testing.T) {
	if _, msg := ValidateDescription("", MaxDescriptionLen); msg != "" {
		t.Errorf("empty description rejected: %s", msg)
	}
	if _, msg := ValidateDescription(strings.Repeat("d", MaxDescriptionLen+1), MaxDescriptionLen); msg == "" {
		t.Error("over-long description should be rejected")
	}
	if _, msg := ValidateDescription(strings.Repeat("d", 501), MaxChannelDescLen); msg == "" {
		t.Error("over-long channel description should be rejected")
	}
}

func TestValidateCategory(t *testing.T) {
	if _, msg := ValidateCategory(strings.Repeat("c", 50)); msg != "" {
		t.Errorf("50-char category rejected: %s", msg)
	}
	if _, msg := ValidateCategory(strings.Repeat("c", 51)); msg == "" {
		t.Error("51-char category should be rejected")
	}
}

func TestValidateTags(t *testing.T) {
	many := make([]string, 21)
	for i := range many {
		many[i] = "t"
	}
	if ValidateTags(many) == "" {
		t.Error("21 tags should be rejected")
	}
	if ValidateTags([]string{strings.Repeat("x", 31)}) == "" {
		t.Error("31-char tag should be rejected")
	}
	if msg := ValidateTags([]string{"music", "live"}); msg != "" {
		t.Errorf("valid tags rejected: %s", msg)
	}
}

func TestValidateComment(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "great video", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"exactly 2000", strings.Repeat("c", 2000), false},
		{"too long", strings.Repeat("c", 2001), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errMsg := ValidateComment(tt.input)
			if tt.wantErr != (errMsg != "") {
				t.Errorf("errMsg = %q, wantErr %v", errMsg, tt.wantErr)
			}
		})
	}
}

func TestValidateSearchQuery(t *testing.T) {
	if _, msg := ValidateSearchQuery(" "); msg == "" {
		t.Error("blank query should be rejected")
	}
	if got, msg := ValidateSearchQuery("  guitar "); msg != "" || got != "guitar" {
		t.Errorf("got %q, %q", got, msg)
	}
}

func TestParsePositiveInt(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"", 0, false},
		{"3", 3, false},
		{"0", 0, true},
		{"-1", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, errMsg := ParsePositiveInt("page", tt.input)
			if tt.wantErr != (errMsg != "") {
				t.Errorf("errMsg = %q, wantErr %v", errMsg, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}
