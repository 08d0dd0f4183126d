package utils

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	if got := KindOf(NotFoundError("x")); got != KindNotFound {
		t.Errorf("KindOf(not found) = %v", got)
	}
	if got := KindOf(ForbiddenError("x")); got != KindForbidden {
		t.Errorf("KindOf(forbidden) = %v", got)
	}
	// Wrapped errors resolve through the chain.
	wrapped := fmt.Errorf("handler: %w", ConflictError("taken"))
	if got := KindOf(wrapped); got != KindConflict {
		t.Errorf("KindOf(wrapped conflict) = %v", got)
	}
	// Anything untyped counts as a dependency failure.
	if got := KindOf(errors.New("boom")); got != KindDependency {
		t.Errorf("KindOf(plain) = %v", got)
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := DependencyError("failed to store invitation", cause)
	if !errors.Is(err, cause) {
		t.Error("cause not reachable through Unwrap")
	}
	if err.Error() != "failed to store invitation: connection refused" {
		t.Errorf("Error() = %q", err.Error())
	}
}
