package mcp

import (
	"errors"
	"fmt"

	"github.com/verseworks/songbook/internal/recording"
	"github.com/verseworks/songbook/internal/store"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. Unmapped errors pass
// through unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, recording.ErrPermissionDenied):
		return &APIError{Code: "PERMISSION_DENIED", Message: "capture permission denied", RecoveryHint: "Grant microphone access in system settings and retry"}
	case errors.Is(err, recording.ErrStartFailed):
		return &APIError{Code: "ACQUISITION_FAILED", Message: "could not acquire the capture device", RecoveryHint: "Transient device issue; retry"}
	case errors.Is(err, recording.ErrNoActiveSession):
		return &APIError{Code: "NO_ACTIVE_SESSION", Message: "no active recording session", RecoveryHint: "Start a recording first"}
	case errors.Is(err, recording.ErrStopFailed):
		return &APIError{Code: "STOP_FAILED", Message: "could not finalize the recording", RecoveryHint: "The take was lost; record again"}
	case errors.Is(err, recording.ErrNotIdle):
		return &APIError{Code: "RECORDER_BUSY", Message: "recorder is mid-lifecycle", RecoveryHint: "Stop or reset the current session first"}
	case errors.Is(err, recording.ErrDebounced):
		return &APIError{Code: "DEBOUNCED", Message: "request coalesced with the previous one", RecoveryHint: "Wait a moment and retry"}
	case errors.Is(err, store.ErrSectionNotFound):
		return &APIError{Code: "SECTION_NOT_FOUND", Message: "section not found", RecoveryHint: "Check the section id"}
	case errors.Is(err, store.ErrRecordingNotFound):
		return &APIError{Code: "RECORDING_NOT_FOUND", Message: "recording not found", RecoveryHint: "Check the recording id"}
	case errors.Is(err, store.ErrProjectNotFound):
		return &APIError{Code: "PROJECT_NOT_FOUND", Message: "project not found", RecoveryHint: "Check the project id"}
	case errors.Is(err, store.ErrStorageWriteFailed):
		return &APIError{Code: "STORAGE_WRITE_FAILED", Message: "snapshot save failed; in-memory state retained", RecoveryHint: "Check disk space; changes persist on the next successful save"}
	default:
		return err
	}
}

// validationRejected builds the error for an artifact the validator
// refused. The artifact is never stored.
func validationRejected(reason string) *APIError {
	return &APIError{
		Code:         "VALIDATION_REJECTED",
		Message:      fmt.Sprintf("artifact rejected: %s", reason),
		RecoveryHint: "The recording failed; record again",
	}
}
