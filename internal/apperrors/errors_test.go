// Package apperrors tests verify the custom error types (ErrNotFound,
// ErrSubtitleResourceNotFound, ErrUnexpectedStatus, ErrListingFormat), their
// Error() messages, Is() matching semantics, and compatibility with errors.Is()
// including through fmt.Errorf wrapping.
package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

// ---------------------------------------------------------------------------
// ErrNotFound
// ---------------------------------------------------------------------------

func TestErrNotFound_Error(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      *ErrNotFound
		expected string
	}{
		{
			name:     "with string ID",
			err:      &ErrNotFound{Resource: "listing", ID: "abc"},
			expected: "listing with ID abc not found",
		},
		{
			name:     "with int ID",
			err:      &ErrNotFound{Resource: "subtitle", ID: 42},
			expected: "subtitle with ID 42 not found",
		},
		{
			name:     "with nil ID",
			err:      &ErrNotFound{Resource: "show", ID: nil},
			expected: "show not found",
		},
		{
			name:     "archive entry helper",
			err:      NewArchiveEntryNotFoundError("S02E03"),
			expected: "subtitle entry in archive with ID S02E03 not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.err.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestErrNotFound_Is(t *testing.T) {
	t.Parallel()
	err := NewNotFoundError("show", 1)

	t.Run("matches another ErrNotFound", func(t *testing.T) {
		if !errors.Is(err, &ErrNotFound{}) {
			t.Error("expected errors.Is to match *ErrNotFound")
		}
	})

	t.Run("does not match ErrSubtitleResourceNotFound", func(t *testing.T) {
		if errors.Is(err, &ErrSubtitleResourceNotFound{}) {
			t.Error("expected errors.Is not to match *ErrSubtitleResourceNotFound")
		}
	})

	t.Run("matches through double wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("mid: %w", fmt.Errorf("inner: %w", err))
		if !errors.Is(wrapped, &ErrNotFound{}) {
			t.Error("expected errors.Is to match *ErrNotFound through double wrapping")
		}
	})
}

// ---------------------------------------------------------------------------
// ErrSubtitleResourceNotFound
// ---------------------------------------------------------------------------

func TestErrSubtitleResourceNotFound(t *testing.T) {
	t.Parallel()
	err := &ErrSubtitleResourceNotFound{URL: "http://example.com/original/1/0"}

	if got := err.Error(); got != "subtitle resource not found at URL: http://example.com/original/1/0" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(fmt.Errorf("download: %w", err), &ErrSubtitleResourceNotFound{}) {
		t.Error("expected errors.Is to match *ErrSubtitleResourceNotFound through wrapping")
	}
	if errors.Is(err, &ErrUnexpectedStatus{}) {
		t.Error("expected errors.Is not to match *ErrUnexpectedStatus")
	}
}

// ---------------------------------------------------------------------------
// ErrUnexpectedStatus
// ---------------------------------------------------------------------------

func TestErrUnexpectedStatus(t *testing.T) {
	t.Parallel()
	err := &ErrUnexpectedStatus{URL: "http://example.com/serie/x/01/01/1", StatusCode: 503}

	if got := err.Error(); got != "unexpected status 503 from http://example.com/serie/x/01/01/1" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(fmt.Errorf("listing: %w", err), &ErrUnexpectedStatus{}) {
		t.Error("expected errors.Is to match *ErrUnexpectedStatus through wrapping")
	}
	if errors.Is(err, &ErrListingFormat{}) {
		t.Error("expected errors.Is not to match *ErrListingFormat")
	}
}

// ---------------------------------------------------------------------------
// ErrListingFormat
// ---------------------------------------------------------------------------

func TestErrListingFormat(t *testing.T) {
	t.Parallel()
	err := &ErrListingFormat{Reason: "missing download link"}

	if got := err.Error(); got != "unexpected listing format: missing download link" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(fmt.Errorf("parse: %w", err), &ErrListingFormat{}) {
		t.Error("expected errors.Is to match *ErrListingFormat through wrapping")
	}
	if errors.Is(err, errors.New("unexpected listing format: missing download link")) {
		t.Error("expected errors.Is not to match a plain error")
	}
}
