package model

import (
	"math"
	"reflect"
	"testing"
)

func TestParseTags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", []string{}},
		{"single", "go", []string{"go"}},
		{"trims", " go , fiber ", []string{"go", "fiber"}},
		{"drops empty entries", "go,, ,fiber,", []string{"go", "fiber"}},
		{"only commas", ",,,", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTags(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseTags(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestVideoStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to VideoStatus
		want     bool
	}{
		{StatusPendingMetadata, StatusUploading, true},
		{StatusPendingMetadata, StatusFailed, true},
		{StatusPendingMetadata, StatusCompleted, false},
		{StatusUploading, StatusProcessing, true},
		{StatusUploading, StatusFailed, true},
		{StatusUploading, StatusCompleted, false},
		{StatusProcessing, StatusCompleted, true},
		{StatusProcessing, StatusFailed, true},
		{StatusCompleted, StatusFailed, false},
		{StatusFailed, StatusUploading, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.want {
				t.Errorf("CanTransition = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVideoPatch_Empty(t *testing.T) {
	if !(VideoPatch{}).Empty() {
		t.Error("zero patch should be empty")
	}
	title := "new"
	if (VideoPatch{Title: &title}).Empty() {
		t.Error("patch with title should not be empty")
	}
}

func TestNewPage(t *testing.T) {
	tests := []struct {
		page, limit         int
		wantPage, wantLimit int
		wantOffset          int
	}{
		{0, 0, 1, DefaultPageLimit, 0},
		{2, 10, 2, 10, 10},
		{-3, 500, 1, MaxPageLimit, 0},
		{3, -1, 3, DefaultPageLimit, 40},
		{math.MaxInt, MaxPageLimit, MaxPage, MaxPageLimit, (MaxPage - 1) * MaxPageLimit},
	}
	for _, tt := range tests {
		p := NewPage(tt.page, tt.limit)
		if p.Page != tt.wantPage || p.Limit != tt.wantLimit || p.Offset() != tt.wantOffset {
			t.Errorf("NewPage(%d, %d) = %+v offset %d, want page=%d limit=%d offset=%d",
				tt.page, tt.limit, p, p.Offset(), tt.wantPage, tt.wantLimit, tt.wantOffset)
		}
	}
}
