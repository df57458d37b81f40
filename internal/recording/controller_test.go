package recording

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/verseworks/songbook/internal/capture"
	"github.com/verseworks/songbook/internal/mocks"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type harness struct {
	device *mocks.Device
	guard  *Guard
	clock  *fakeClock
	ctrl   *Controller
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	device := &mocks.Device{}
	guard := NewGuard(device.Release)
	clock := newFakeClock()
	opts.Now = clock.Now
	if opts.TickPeriod == 0 {
		opts.TickPeriod = time.Hour // keep tickers quiet unless a test wants them
	}
	ctrl := NewController(device, guard, nil, opts)
	t.Cleanup(ctrl.Close)
	return &harness{device: device, guard: guard, clock: clock, ctrl: ctrl}
}

func TestStartStopLifecycle(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	handle := mocks.NewHandle()

	h.device.On("RequestPermission", mock.Anything).Return(true, nil)
	h.device.On("Prepare", mock.Anything, mock.Anything).Return(handle, nil)
	h.device.On("Start", handle).Return(nil)
	h.device.On("Stop", handle).Return(capture.Artifact{URI: "/takes/a.m4a", DurationMillis: 2500}, nil)

	require.NoError(t, h.ctrl.Start(ctx))
	require.Equal(t, StateRecording, h.ctrl.State())
	require.True(t, h.guard.Held())

	h.clock.Advance(time.Second)
	art, err := h.ctrl.Stop(ctx)
	require.NoError(t, err)
	require.Equal(t, "/takes/a.m4a", art.URI)
	require.Equal(t, 2, art.DurationSeconds)

	require.Equal(t, StateIdle, h.ctrl.State())
	require.False(t, h.guard.Held())
	require.GreaterOrEqual(t, h.device.ReleaseCount(), 1)
}

func TestStopWhileIdleIsNoOp(t *testing.T) {
	h := newHarness(t, Options{})

	// No expectations set: any device call would fail the test.
	_, err := h.ctrl.Stop(context.Background())
	require.ErrorIs(t, err, ErrNoActiveSession)
	require.Equal(t, StateIdle, h.ctrl.State())
	require.False(t, h.guard.Held())
	require.Zero(t, h.device.ReleaseCount())
}

func TestRapidDoubleStartDebounced(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	handle := mocks.NewHandle()

	h.device.On("RequestPermission", mock.Anything).Return(true, nil)
	h.device.On("Prepare", mock.Anything, mock.Anything).Return(handle, nil)
	h.device.On("Start", handle).Return(nil)

	require.NoError(t, h.ctrl.Start(ctx))
	// Second tap lands inside the debounce window: exactly one accepted start.
	require.ErrorIs(t, h.ctrl.Start(ctx), ErrDebounced)

	h.device.AssertNumberOfCalls(t, "Prepare", 1)
	require.True(t, h.guard.Held())
}

func TestStartWhileRecordingRejected(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	handle := mocks.NewHandle()

	h.device.On("RequestPermission", mock.Anything).Return(true, nil)
	h.device.On("Prepare", mock.Anything, mock.Anything).Return(handle, nil)
	h.device.On("Start", handle).Return(nil)

	require.NoError(t, h.ctrl.Start(ctx))
	h.clock.Advance(time.Second) // past the debounce window

	require.ErrorIs(t, h.ctrl.Start(ctx), ErrNotIdle)
	h.device.AssertNumberOfCalls(t, "Prepare", 1)
}

func TestPermissionDenied(t *testing.T) {
	h := newHarness(t, Options{})

	h.device.On("RequestPermission", mock.Anything).Return(false, nil)

	err := h.ctrl.Start(context.Background())
	require.ErrorIs(t, err, ErrPermissionDenied)
	require.Equal(t, StateIdle, h.ctrl.State())
	require.False(t, h.guard.Held())
}

func TestPrepareFailureReturnsToIdle(t *testing.T) {
	h := newHarness(t, Options{})

	h.device.On("RequestPermission", mock.Anything).Return(true, nil)
	h.device.On("Prepare", mock.Anything, mock.Anything).Return(nil, context.DeadlineExceeded)

	err := h.ctrl.Start(context.Background())
	require.ErrorIs(t, err, ErrStartFailed)
	require.Equal(t, StateIdle, h.ctrl.State())
	require.False(t, h.guard.Held())

	// The controller recovers: a later start succeeds.
	h.clock.Advance(time.Second)
	handle := mocks.NewHandle()
	h.device.ExpectedCalls = nil
	h.device.On("RequestPermission", mock.Anything).Return(true, nil)
	h.device.On("Prepare", mock.Anything, mock.Anything).Return(handle, nil)
	h.device.On("Start", handle).Return(nil)
	require.NoError(t, h.ctrl.Start(context.Background()))
	require.True(t, h.guard.Held())
}

func TestDeviceStartFailureReleasesHandle(t *testing.T) {
	h := newHarness(t, Options{})
	handle := mocks.NewHandle()

	h.device.On("RequestPermission", mock.Anything).Return(true, nil)
	h.device.On("Prepare", mock.Anything, mock.Anything).Return(handle, nil)
	h.device.On("Start", handle).Return(context.DeadlineExceeded)

	err := h.ctrl.Start(context.Background())
	require.ErrorIs(t, err, ErrStartFailed)
	require.Equal(t, StateIdle, h.ctrl.State())
	require.False(t, h.guard.Held())
	require.Contains(t, h.device.Released(), capture.Handle(handle))
}

func TestStartReleasesLeakedHandle(t *testing.T) {
	h := newHarness(t, Options{})
	stale := mocks.NewHandle()
	h.guard.Acquire(stale)

	fresh := mocks.NewHandle()
	h.device.On("RequestPermission", mock.Anything).Return(true, nil)
	h.device.On("Prepare", mock.Anything, mock.Anything).Return(fresh, nil)
	h.device.On("Start", fresh).Return(nil)

	require.NoError(t, h.ctrl.Start(context.Background()))
	require.Contains(t, h.device.Released(), capture.Handle(stale))
	require.True(t, h.guard.Held())
}

func TestStopDeadSessionCleansUp(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	handle := mocks.NewHandle()

	h.device.On("RequestPermission", mock.Anything).Return(true, nil)
	h.device.On("Prepare", mock.Anything, mock.Anything).Return(handle, nil)
	h.device.On("Start", handle).Return(nil)
	// No Stop expectation: finalizing a dead session would fail the test.

	require.NoError(t, h.ctrl.Start(ctx))
	handle.Kill() // session ends out-of-band
	h.clock.Advance(time.Second)

	_, err := h.ctrl.Stop(ctx)
	require.ErrorIs(t, err, ErrNoActiveSession)
	require.Equal(t, StateIdle, h.ctrl.State())
	require.False(t, h.guard.Held())
}

func TestStopFinalizeFailureCleansUp(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	handle := mocks.NewHandle()

	h.device.On("RequestPermission", mock.Anything).Return(true, nil)
	h.device.On("Prepare", mock.Anything, mock.Anything).Return(handle, nil)
	h.device.On("Start", handle).Return(nil)
	h.device.On("Stop", handle).Return(capture.Artifact{}, context.DeadlineExceeded)

	require.NoError(t, h.ctrl.Start(ctx))
	h.clock.Advance(time.Second)

	_, err := h.ctrl.Stop(ctx)
	require.ErrorIs(t, err, ErrStopFailed)
	require.Equal(t, StateIdle, h.ctrl.State())
	require.False(t, h.guard.Held())
}

func TestDurationFallsBackToTrackedElapsed(t *testing.T) {
	ticks := make(chan int, 64)
	h := newHarness(t, Options{
		TickPeriod: 5 * time.Millisecond,
		OnElapsed: func(s int) {
			select {
			case ticks <- s:
			default:
			}
		},
	})
	ctx := context.Background()
	handle := mocks.NewHandle()

	h.device.On("RequestPermission", mock.Anything).Return(true, nil)
	h.device.On("Prepare", mock.Anything, mock.Anything).Return(handle, nil)
	h.device.On("Start", handle).Return(nil)
	// The session reports no duration.
	h.device.On("Stop", handle).Return(capture.Artifact{URI: "/takes/a.m4a", DurationMillis: 0}, nil)

	require.NoError(t, h.ctrl.Start(ctx))

	select {
	case <-ticks:
	case <-time.After(2 * time.Second):
		t.Fatal("elapsed tick never fired")
	}

	h.clock.Advance(time.Second)
	art, err := h.ctrl.Stop(ctx)
	require.NoError(t, err)
	require.Positive(t, art.DurationSeconds)
	require.Equal(t, h.ctrl.Elapsed(), art.DurationSeconds)
}

func TestResetDuringPreparingDiscardsStart(t *testing.T) {
	h := newHarness(t, Options{})
	handle := mocks.NewHandle()

	prepareEntered := make(chan struct{})
	unblock := make(chan struct{})
	h.device.On("RequestPermission", mock.Anything).Return(true, nil)
	h.device.On("Prepare", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		close(prepareEntered)
		<-unblock
	}).Return(handle, nil)
	// No Start expectation: committing a discarded start would fail the test.

	startErr := make(chan error, 1)
	go func() { startErr <- h.ctrl.Start(context.Background()) }()

	<-prepareEntered
	require.NoError(t, h.ctrl.Reset())
	require.Equal(t, StateIdle, h.ctrl.State())

	close(unblock)
	require.NoError(t, <-startErr)

	// The reset wins: no session exists and the prepared handle was freed.
	require.Equal(t, StateIdle, h.ctrl.State())
	require.False(t, h.guard.Held())
	require.Contains(t, h.device.Released(), capture.Handle(handle))
}

func TestCloseDuringPreparingDiscardsStart(t *testing.T) {
	h := newHarness(t, Options{})
	handle := mocks.NewHandle()

	prepareEntered := make(chan struct{})
	unblock := make(chan struct{})
	h.device.On("RequestPermission", mock.Anything).Return(true, nil)
	h.device.On("Prepare", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		close(prepareEntered)
		<-unblock
	}).Return(handle, nil)

	startErr := make(chan error, 1)
	go func() { startErr <- h.ctrl.Start(context.Background()) }()

	<-prepareEntered
	h.ctrl.Close()

	close(unblock)
	require.NoError(t, <-startErr)

	require.Equal(t, StateIdle, h.ctrl.State())
	require.False(t, h.guard.Held())
	require.Contains(t, h.device.Released(), capture.Handle(handle))
}

func TestStopImmediatelyAfterStart(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	handle := mocks.NewHandle()

	h.device.On("RequestPermission", mock.Anything).Return(true, nil)
	h.device.On("Prepare", mock.Anything, mock.Anything).Return(handle, nil)
	h.device.On("Start", handle).Return(nil)
	h.device.On("Stop", handle).Return(capture.Artifact{URI: "/takes/a.m4a", DurationMillis: 180}, nil)

	require.NoError(t, h.ctrl.Start(ctx))

	// No clock advance: a sub-window take still stops on the first tap.
	art, err := h.ctrl.Stop(ctx)
	require.NoError(t, err)
	require.Equal(t, "/takes/a.m4a", art.URI)
	require.Equal(t, StateIdle, h.ctrl.State())
	require.False(t, h.guard.Held())
}

func TestRapidDoubleStopDebounced(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	handle := mocks.NewHandle()

	h.device.On("RequestPermission", mock.Anything).Return(true, nil)
	h.device.On("Prepare", mock.Anything, mock.Anything).Return(handle, nil)
	h.device.On("Start", handle).Return(nil)
	h.device.On("Stop", handle).Return(capture.Artifact{URI: "/takes/a.m4a", DurationMillis: 1000}, nil)

	require.NoError(t, h.ctrl.Start(ctx))
	h.clock.Advance(time.Second)

	_, err := h.ctrl.Stop(ctx)
	require.NoError(t, err)

	// Second tap lands inside the debounce window: exactly one accepted stop.
	_, err = h.ctrl.Stop(ctx)
	require.ErrorIs(t, err, ErrDebounced)
	h.device.AssertNumberOfCalls(t, "Stop", 1)
}

func TestStopWhileIdleInsideStartWindow(t *testing.T) {
	h := newHarness(t, Options{})
	h.device.On("RequestPermission", mock.Anything).Return(false, nil)

	require.ErrorIs(t, h.ctrl.Start(context.Background()), ErrPermissionDenied)

	// Right after an accepted start: a stop with no session is a state
	// error, not a coalesced duplicate.
	_, err := h.ctrl.Stop(context.Background())
	require.ErrorIs(t, err, ErrNoActiveSession)
}

func TestResetFromIdleClearsPartialState(t *testing.T) {
	h := newHarness(t, Options{})
	stale := mocks.NewHandle()
	h.guard.Acquire(stale)

	require.NoError(t, h.ctrl.Reset())
	require.False(t, h.guard.Held())
	require.Equal(t, StateIdle, h.ctrl.State())
}

func TestResetWhileRecordingRejected(t *testing.T) {
	h := newHarness(t, Options{})
	handle := mocks.NewHandle()

	h.device.On("RequestPermission", mock.Anything).Return(true, nil)
	h.device.On("Prepare", mock.Anything, mock.Anything).Return(handle, nil)
	h.device.On("Start", handle).Return(nil)

	require.NoError(t, h.ctrl.Start(context.Background()))
	require.ErrorIs(t, h.ctrl.Reset(), ErrNotIdle)
	require.True(t, h.guard.Held())
}

func TestCloseTearsDownFromRecording(t *testing.T) {
	h := newHarness(t, Options{})
	handle := mocks.NewHandle()

	h.device.On("RequestPermission", mock.Anything).Return(true, nil)
	h.device.On("Prepare", mock.Anything, mock.Anything).Return(handle, nil)
	h.device.On("Start", handle).Return(nil)

	require.NoError(t, h.ctrl.Start(context.Background()))
	h.ctrl.Close()

	require.Equal(t, StateIdle, h.ctrl.State())
	require.False(t, h.guard.Held())
	require.Contains(t, h.device.Released(), capture.Handle(handle))
}

func TestSingleSessionInvariantAcrossSequences(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()

	h.device.On("RequestPermission", mock.Anything).Return(true, nil)
	h.device.On("Prepare", mock.Anything, mock.Anything).Return(mocks.NewHandle(), nil)
	h.device.On("Start", mock.Anything).Return(nil)
	h.device.On("Stop", mock.Anything).Return(capture.Artifact{URI: "/takes/a.m4a", DurationMillis: 1000}, nil)

	for i := 0; i < 5; i++ {
		require.NoError(t, h.ctrl.Start(ctx))
		require.True(t, h.guard.Held())

		h.clock.Advance(time.Second)
		_, err := h.ctrl.Stop(ctx)
		require.NoError(t, err)
		require.False(t, h.guard.Held())

		h.clock.Advance(time.Second)
	}
}
