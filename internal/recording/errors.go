package recording

import "errors"

var (
	// ErrPermissionDenied indicates capture permission was refused.
	// User-recoverable: retry after a settings change.
	ErrPermissionDenied = errors.New("capture permission denied")
	// ErrStartFailed indicates device acquisition failed. Transient; retry.
	ErrStartFailed = errors.New("recording start failed")
	// ErrStopFailed indicates capture finalization failed; the take is lost.
	ErrStopFailed = errors.New("recording stop failed")
	// ErrNoActiveSession indicates stop was called with no live session:
	// either a caller sequencing error or a session that died out-of-band.
	// Treated as a no-op, never a crash.
	ErrNoActiveSession = errors.New("no active recording session")
	// ErrNotIdle indicates an operation requiring the idle state found the
	// controller mid-lifecycle.
	ErrNotIdle = errors.New("recorder is not idle")
	// ErrDebounced indicates a request landed inside the debounce window of
	// the previous accepted request and was ignored.
	ErrDebounced = errors.New("request debounced")
)
