// Package capture defines the capture device collaborator: the single
// physical input the recording lifecycle controller owns exclusively.
package capture

import "context"

// Config is the explicit capture configuration. Every field is set
// deterministically; platform defaults are unreliable on some devices and
// are never relied on.
type Config struct {
	Format     string // container/codec short name, doubles as file extension
	SampleRate int    // Hz
	Channels   int
	BitRate    int // bits per second
}

// DefaultConfig returns the voice-memo capture configuration.
func DefaultConfig() Config {
	return Config{
		Format:     "m4a",
		SampleRate: 44100,
		Channels:   1,
		BitRate:    128000,
	}
}

// Artifact is the raw result of a finalized capture session.
type Artifact struct {
	URI            string
	DurationMillis int64
}

// Handle is the opaque resource representing an acquired, prepared capture
// session.
type Handle interface {
	// Active reports whether the underlying session is still live. A session
	// can end out-of-band (device yanked, process died); callers must check
	// before finalizing.
	Active() bool
}

// Device abstracts the physical capture device.
//
// Release must be safe to call on an already-released or already-stopped
// handle, and must be called even when Prepare or Stop fail partway.
type Device interface {
	// RequestPermission asks for capture permission. false with nil error
	// means the user refused.
	RequestPermission(ctx context.Context) (bool, error)

	// Prepare allocates a new capture session with the given configuration.
	// The session is not recording until Start.
	Prepare(ctx context.Context, cfg Config) (Handle, error)

	// Start begins capturing on a prepared handle.
	Start(h Handle) error

	// Stop finalizes the capture and returns the resulting artifact.
	Stop(h Handle) (Artifact, error)

	// Release frees all resources held by the handle. Idempotent and
	// best-effort; it never reports an error.
	Release(h Handle)
}
