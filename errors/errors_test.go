package errors

import (
	"fmt"
	"testing"
)

func TestSyncError(t *testing.T) {
	// Test basic error creation
	err := New(ErrCodeDictionaryNotFound, "dictionary not found")
	if err.Code != ErrCodeDictionaryNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeDictionaryNotFound, err.Code)
	}

	// Test error wrapping
	cause := fmt.Errorf("underlying error")
	wrapped := Wrap(cause, ErrCodeIO, "read failed")

	if wrapped.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}

	// Test Is function
	if !Is(wrapped, ErrCodeIO) {
		t.Error("Is should return true for matching code")
	}

	if Is(wrapped, ErrCodeParse) {
		t.Error("Is should return false for non-matching code")
	}

	// Test WithDetail
	detailed := err.WithDetail("dictionary", "project-words").WithDetail("folder", "/tmp/ws")
	if detailed.Details["dictionary"] != "project-words" {
		t.Error("WithDetail should add details")
	}
}

func TestErrorConstructors(t *testing.T) {
	err := DictionaryNotFound("terms")
	if err.Code != ErrCodeDictionaryNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeDictionaryNotFound, err.Code)
	}
	if err.Details["dictionary"] != "terms" {
		t.Error("expected dictionary detail to be set")
	}

	mode := ModeDisabled("bidirectional sync")
	if GetCode(mode) != ErrCodeModeDisabled {
		t.Errorf("expected MODE_DISABLED, got %s", GetCode(mode))
	}

	parse := ParseFailed("/ws/.vscode/settings.json", fmt.Errorf("unexpected end of JSON input"))
	if !Is(parse, ErrCodeParse) {
		t.Error("expected PARSE_ERROR code")
	}
	if parse.Unwrap() == nil {
		t.Error("expected wrapped cause")
	}
}

func TestGetCodeNonSyncError(t *testing.T) {
	if GetCode(fmt.Errorf("plain")) != "" {
		t.Error("plain errors have no code")
	}
	wrapped := fmt.Errorf("outer: %w", New(ErrCodeStore, "store failed"))
	if GetCode(wrapped) != ErrCodeStore {
		t.Error("GetCode should unwrap to find the code")
	}
}
