package app

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
		msg  string
	}{
		{name: "validation", err: Validation("name is required"), kind: ErrValidation, msg: "name is required"},
		{name: "not found", err: NotFound("playlist %s not found", "p1"), kind: ErrNotFound, msg: "playlist p1 not found"},
		{name: "forbidden", err: Forbidden("playlist is private"), kind: ErrForbidden, msg: "playlist is private"},
		{name: "integrity", err: Integrity("share code space exhausted"), kind: ErrIntegrity, msg: "share code space exhausted"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if !errors.Is(tc.err, tc.kind) {
				t.Fatalf("expected %v to match kind %v", tc.err, tc.kind)
			}
			if tc.err.Error() != tc.msg {
				t.Fatalf("expected message %q, got %q", tc.msg, tc.err.Error())
			}
			wrapped := fmt.Errorf("handler: %w", tc.err)
			if !errors.Is(wrapped, tc.kind) {
				t.Fatalf("expected wrapped error to keep kind %v", tc.kind)
			}
		})
	}

	if errors.Is(Validation("x"), ErrNotFound) {
		t.Fatal("validation error must not match ErrNotFound")
	}
}
