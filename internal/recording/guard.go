package recording

import (
	"sync"

	"github.com/verseworks/songbook/internal/capture"
)

// Guard is the process-wide single-active-session arena: it holds at most
// one live capture handle at any time. It backs the global invariant the
// controller's local state machine cannot enforce on its own — a session
// started by a lifecycle that was torn down abnormally still gets released
// here on the next acquire.
//
// Guard is an explicit, injectable owner rather than an ambient global so
// tests can assert on its state.
type Guard struct {
	release func(capture.Handle)

	mu     sync.Mutex
	handle capture.Handle
}

// NewGuard creates a guard that frees handles with the given release
// function, typically Device.Release.
func NewGuard(release func(capture.Handle)) *Guard {
	return &Guard{release: release}
}

// Acquire takes ownership of a new handle, forcibly releasing any handle
// still held from a previous session.
func (g *Guard) Acquire(h capture.Handle) {
	g.mu.Lock()
	prev := g.handle
	g.handle = h
	g.mu.Unlock()

	if prev != nil {
		g.release(prev)
	}
}

// Release frees the held handle, if any. Idempotent and best-effort: the
// release function swallows errors from an already-released or
// already-stopped handle.
func (g *Guard) Release() {
	g.mu.Lock()
	prev := g.handle
	g.handle = nil
	g.mu.Unlock()

	if prev != nil {
		g.release(prev)
	}
}

// Held reports whether a handle is currently held.
func (g *Guard) Held() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.handle != nil
}
