package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{"NotFound wraps ErrNotFound", NotFound("profile"), ErrNotFound, true},
		{"Capacity wraps ErrCapacity", Capacity(4), ErrCapacity, true},
		{"Token wraps ErrToken", Token(ReasonExpired), ErrToken, true},
		{"NoEffect wraps ErrMutation", NoEffect(), ErrMutation, true},
		{"wrapped further still matches", fmt.Errorf("ctx: %w", Conflict("dup")), ErrConflict, true},
		{"NotFound is not validation", NotFound("user"), ErrValidation, false},
		{"Authentication is not token", Authentication(ReasonBadPassword), ErrToken, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestReasonOf(t *testing.T) {
	if r := ReasonOf(fmt.Errorf("wrap: %w", Token(ReasonExpired))); r != ReasonExpired {
		t.Fatalf("ReasonOf = %q, want %q", r, ReasonExpired)
	}
	if r := ReasonOf(errors.New("plain")); r != ReasonNone {
		t.Fatalf("ReasonOf(plain) = %q, want empty", r)
	}
}

func TestMessageOfHidesUnclassified(t *testing.T) {
	if m := MessageOf(errors.New("mongo: connection refused")); m != "" {
		t.Fatalf("MessageOf leaked %q", m)
	}
	if m := MessageOf(NotFound("profile")); m != "profile not found" {
		t.Fatalf("MessageOf = %q", m)
	}
}
