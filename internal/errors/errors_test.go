package errors

import (
	"errors"
	"os"
	"testing"
)

func TestBadExtensionErrorMessage(t *testing.T) {
	err := NewBadExtensionError("src/data.xyz", ".xyz")
	if got := err.Error(); got != `file src/data.xyz has unsupported extension ".xyz"` {
		t.Errorf("unexpected message: %s", got)
	}

	withHint := NewBadExtensionError("src/a.pyy", ".pyy").WithSuggestion(".py")
	if got := withHint.Error(); got != `file src/a.pyy has unsupported extension ".pyy" (did you mean ".py"?)` {
		t.Errorf("unexpected message: %s", got)
	}
}

func TestStatsUnavailableUnwrap(t *testing.T) {
	underlying := os.ErrNotExist
	err := NewStatsUnavailableError("a.c", "c", underlying)
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("expected Unwrap to expose the underlying error")
	}
}

func TestFileReadUnwrap(t *testing.T) {
	underlying := os.ErrPermission
	err := NewFileReadError("open", "a.c", underlying)
	if !errors.Is(err, os.ErrPermission) {
		t.Error("expected Unwrap to expose the underlying error")
	}
}

func TestIsRecoverable(t *testing.T) {
	recoverable := []error{
		NewBadExtensionError("a.xyz", ".xyz"),
		NewStatsUnavailableError("a.c", "c", nil),
		NewFileReadError("open", "a.c", os.ErrPermission),
	}
	for _, err := range recoverable {
		if !IsRecoverable(err) {
			t.Errorf("expected %T to be recoverable", err)
		}
	}

	fatal := []error{
		NewConsistencyError("empty node set"),
		NewConfigError("jobs", "0", errors.New("must be positive")),
		errors.New("plain"),
	}
	for _, err := range fatal {
		if IsRecoverable(err) {
			t.Errorf("expected %T to be fatal", err)
		}
	}
}

func TestConsistencyErrorMessage(t *testing.T) {
	err := NewConsistencyError("labels (%d) and parents (%d) length mismatch", 3, 2)
	want := "result consistency violation: labels (3) and parents (2) length mismatch"
	if got := err.Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
