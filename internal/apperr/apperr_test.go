package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindConflict, http.StatusBadRequest},
		{KindAuthentication, http.StatusUnauthorized},
		{KindAuthorization, http.StatusForbidden},
		{KindNotFound, http.StatusNotFound},
		{KindRateLimited, http.StatusTooManyRequests},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := tt.kind.Status(); got != tt.want {
				t.Errorf("Status() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNotFoundMessage(t *testing.T) {
	err := NotFound("Video")
	if err.Message != "Video not found" {
		t.Errorf("Message = %q, want %q", err.Message, "Video not found")
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("handler: %w", Authorization("You can only delete your own videos"))
	if got := KindOf(err); got != KindAuthorization {
		t.Errorf("KindOf = %v, want %v", got, KindAuthorization)
	}
	if !Is(err, KindAuthorization) {
		t.Error("Is(err, KindAuthorization) = false")
	}
}

func TestKindOf_PlainError(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != KindInternal {
		t.Errorf("KindOf = %v, want %v", got, KindInternal)
	}
}

func TestInternalUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("Failed to toggle like", cause)
	if !errors.Is(err, cause) {
		t.Error("Internal should unwrap to its cause")
	}
}
