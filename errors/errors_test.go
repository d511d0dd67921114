package errors

import (
	"fmt"
	"testing"
)

func TestLookoutError(t *testing.T) {
	// Test basic error creation
	err := New(ErrCodeRootNotRepo, "root is not a repository")
	if err.Code != ErrCodeRootNotRepo {
		t.Errorf("expected code %s, got %s", ErrCodeRootNotRepo, err.Code)
	}

	// Test error wrapping
	cause := fmt.Errorf("underlying error")
	wrapped := Wrap(cause, ErrCodeCommandFailed, "command failed")

	if wrapped.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}

	// Test Is function
	if !Is(wrapped, ErrCodeCommandFailed) {
		t.Error("Is should return true for matching code")
	}

	if Is(wrapped, ErrCodeRootNotRepo) {
		t.Error("Is should return false for non-matching code")
	}

	// Test WithDetail
	detailed := err.WithDetail("root", "/tmp/work").WithDetail("attempts", 2)
	if detailed.Details["root"] != "/tmp/work" {
		t.Error("WithDetail should add details")
	}
}

func TestErrorConstructors(t *testing.T) {
	// Test RootNotRepo
	err := RootNotRepo("/tmp/work")
	if err.Code != ErrCodeRootNotRepo {
		t.Errorf("expected code %s, got %s", ErrCodeRootNotRepo, err.Code)
	}
	if err.Details["root"] != "/tmp/work" {
		t.Error("RootNotRepo should include root detail")
	}

	// Test DiffFailed
	err = DiffFailed("src/main.go", fmt.Errorf("boom"))
	if err.Code != ErrCodeDiffFailed {
		t.Errorf("expected code %s, got %s", ErrCodeDiffFailed, err.Code)
	}
	if err.Details["path"] != "src/main.go" {
		t.Error("DiffFailed should include path detail")
	}
}
