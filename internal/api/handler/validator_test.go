package handler

import (
	"errors"
	"testing"

	"github.com/quillpress/blog-system/internal/core/domain"
)

func TestValidator_ReportsJSONFieldNames(t *testing.T) {
	err := NewValidator().Validate(&registerRequest{Email: "nope", Username: "ab"})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput in chain")
	}
	want := []string{
		"email must be a valid email",
		"username must be at least 3 characters",
		"password is required",
	}
	if len(ve.Fields) != len(want) {
		t.Fatalf("fields = %v, want %v", ve.Fields, want)
	}
	for i := range want {
		if ve.Fields[i] != want[i] {
			t.Fatalf("fields[%d] = %q, want %q", i, ve.Fields[i], want[i])
		}
	}
}

func TestValidator_ValidRequest(t *testing.T) {
	if err := NewValidator().Validate(&loginRequest{Email: "a@b.co", Password: "pw"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
