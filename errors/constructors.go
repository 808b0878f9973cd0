package errors

import (
	"fmt"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *SyncError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *SyncError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// ParseFailed creates a parse error for a settings or dictionary file
func ParseFailed(path string, err error) *SyncError {
	return Wrap(err, ErrCodeParse, fmt.Sprintf("failed to parse %s", path)).
		WithDetail("path", path)
}

// ReadFailed creates an IO error for an unreadable file
func ReadFailed(path string, err error) *SyncError {
	return Wrap(err, ErrCodeIO, fmt.Sprintf("failed to read %s", path)).
		WithDetail("path", path)
}

// WriteFailed creates an IO error for an unwritable file
func WriteFailed(path string, err error) *SyncError {
	return Wrap(err, ErrCodeIO, fmt.Sprintf("failed to write %s", path)).
		WithDetail("path", path)
}

// DictionaryNotFound creates an error for a dictionary name with no
// entry in the folder's custom dictionary registrations.
func DictionaryNotFound(name string) *SyncError {
	return New(ErrCodeDictionaryNotFound, fmt.Sprintf("custom dictionary '%s' is not registered", name)).
		WithDetail("dictionary", name)
}

// ModeDisabled creates an error for an explicitly disabled sync direction
func ModeDisabled(operation string) *SyncError {
	return New(ErrCodeModeDisabled, fmt.Sprintf("%s is disabled by configuration", operation)).
		WithDetail("operation", operation)
}

// StoreFailed wraps a settings-store access failure
func StoreFailed(key string, err error) *SyncError {
	return Wrap(err, ErrCodeStore, fmt.Sprintf("settings store access failed for key '%s'", key)).
		WithDetail("key", key)
}
