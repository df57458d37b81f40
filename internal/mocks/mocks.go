// Package mocks provides testify doubles for the collaborator seams.
package mocks

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/verseworks/songbook/internal/capture"
)

// Handle is a controllable capture.Handle for tests.
type Handle struct {
	mu   sync.Mutex
	live bool
}

// NewHandle returns a live handle.
func NewHandle() *Handle {
	return &Handle{live: true}
}

func (h *Handle) Active() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.live
}

// Kill simulates the underlying session ending out-of-band.
func (h *Handle) Kill() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.live = false
}

// Device is a mock for capture.Device. Release is counted rather than
// expectation-driven because the controller calls it best-effort on every
// exit path.
type Device struct {
	mock.Mock

	mu       sync.Mutex
	released []capture.Handle
}

func (m *Device) RequestPermission(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *Device) Prepare(ctx context.Context, cfg capture.Config) (capture.Handle, error) {
	args := m.Called(ctx, cfg)
	if h, ok := args.Get(0).(capture.Handle); ok {
		return h, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Device) Start(h capture.Handle) error {
	args := m.Called(h)
	return args.Error(0)
}

func (m *Device) Stop(h capture.Handle) (capture.Artifact, error) {
	args := m.Called(h)
	if art, ok := args.Get(0).(capture.Artifact); ok {
		return art, args.Error(1)
	}
	return capture.Artifact{}, args.Error(1)
}

func (m *Device) Release(h capture.Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.released = append(m.released, h)
}

// ReleaseCount returns how many times Release was invoked.
func (m *Device) ReleaseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.released)
}

// Released returns every handle Release was invoked with, in order.
func (m *Device) Released() []capture.Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]capture.Handle, len(m.released))
	copy(out, m.released)
	return out
}

// KV is a mock for kv.Store.
type KV struct {
	mock.Mock
}

func (m *KV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	if value, ok := args.Get(0).([]byte); ok {
		return value, args.Bool(1), args.Error(2)
	}
	return nil, args.Bool(1), args.Error(2)
}

func (m *KV) Set(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}
