// Package recording implements the recording lifecycle controller: the one
// owner of the capture device across asynchronous start/stop/reset
// operations.
package recording

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/verseworks/songbook/internal/capture"
)

// State is the controller's lifecycle state. Preparing and Stopping exist
// specifically to make concurrent re-entrant calls observable and
// rejectable; no transition skips them.
type State string

const (
	StateIdle      State = "idle"
	StatePreparing State = "preparing"
	StateRecording State = "recording"
	StateStopping  State = "stopping"
)

const (
	defaultTickPeriod     = time.Second
	defaultDebounceWindow = 250 * time.Millisecond
)

// Artifact is the finalized audio descriptor a successful stop produces.
type Artifact struct {
	URI             string `json:"uri"`
	DurationSeconds int    `json:"durationSeconds"`
}

// Options tunes a Controller. Zero values take defaults.
type Options struct {
	// Config is the explicit capture configuration for every session.
	Config capture.Config
	// TickPeriod is the elapsed-time/amplitude emission period.
	TickPeriod time.Duration
	// DebounceWindow coalesces rapid repeated start/stop taps.
	DebounceWindow time.Duration
	// Now overrides the clock, for tests.
	Now func() time.Time
	// OnElapsed receives the elapsed whole-seconds counter every tick.
	OnElapsed func(seconds int)
	// OnAmplitude receives a visual amplitude sample every tick. Cosmetic.
	OnAmplitude func(level float64)
}

// Controller drives the capture device through
// idle → preparing → recording → stopping → idle. Every error path ends in
// idle. Each public operation checks and updates the state synchronously
// before its first suspension point, so operations never interleave their
// effects even though device calls block.
type Controller struct {
	device capture.Device
	guard  *Guard
	logger *slog.Logger

	cfg            capture.Config
	tickPeriod     time.Duration
	debounceWindow time.Duration
	now            func() time.Time
	onElapsed      func(int)
	onAmplitude    func(float64)

	mu        sync.Mutex
	state     State
	handle    capture.Handle
	elapsed   int
	lastStart time.Time
	lastStop  time.Time
	seq       uint64
	tickStop  chan struct{}
	tickDone  chan struct{}
}

// NewController creates an idle controller over the given device and guard.
func NewController(device capture.Device, guard *Guard, logger *slog.Logger, opts Options) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Config == (capture.Config{}) {
		opts.Config = capture.DefaultConfig()
	}
	if opts.TickPeriod <= 0 {
		opts.TickPeriod = defaultTickPeriod
	}
	if opts.DebounceWindow <= 0 {
		opts.DebounceWindow = defaultDebounceWindow
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Controller{
		device:         device,
		guard:          guard,
		logger:         logger,
		cfg:            opts.Config,
		tickPeriod:     opts.TickPeriod,
		debounceWindow: opts.DebounceWindow,
		now:            opts.Now,
		onElapsed:      opts.OnElapsed,
		onAmplitude:    opts.OnAmplitude,
		state:          StateIdle,
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Elapsed returns the locally tracked elapsed seconds of the active session.
func (c *Controller) Elapsed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsed
}

// debouncedLocked reports whether a request falls inside the debounce
// window of the previous accepted request of the same operation. Debounce
// coalesces repeated identical taps only; a start followed by a quick stop
// is two distinct operations and passes. This is a defense against
// double-invocation from rapid repeated input, not a substitute for the
// state machine's re-entrancy checks.
func (c *Controller) debouncedLocked(lastAccepted time.Time) bool {
	return !lastAccepted.IsZero() && c.now().Sub(lastAccepted) < c.debounceWindow
}

// superseded reports whether a reset or teardown bumped the lifecycle
// sequence after the given start was accepted.
func (c *Controller) superseded(seq uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq != seq || c.state != StatePreparing
}

// Start acquires the device and begins a capture session. Valid only from
// idle. A reset or close landing while the session is still preparing
// discards it: Start frees the session and returns nil without ever
// reaching recording.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.debouncedLocked(c.lastStart) {
		c.mu.Unlock()
		return ErrDebounced
	}
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrNotIdle
	}
	c.lastStart = c.now()
	c.state = StatePreparing
	c.seq++
	seq := c.seq
	c.mu.Unlock()

	granted, err := c.device.RequestPermission(ctx)
	if err != nil {
		c.toIdle()
		return fmt.Errorf("%w: requesting permission: %v", ErrStartFailed, err)
	}
	if !granted {
		c.toIdle()
		return ErrPermissionDenied
	}

	// Safety net: a previous session may have leaked past a crashed or
	// interrupted lifecycle. Force-release whatever the guard still holds.
	c.guard.Release()

	handle, err := c.device.Prepare(ctx, c.cfg)
	if err != nil {
		c.toIdle()
		return fmt.Errorf("%w: preparing session: %v", ErrStartFailed, err)
	}

	// A reset or teardown may have discarded this start while Prepare was in
	// flight. The discard wins: free the session and never start capturing.
	if c.superseded(seq) {
		c.device.Release(handle)
		c.logger.Info("start discarded before commit")
		return nil
	}
	c.guard.Acquire(handle)

	if err := c.device.Start(handle); err != nil {
		c.guard.Release()
		c.toIdle()
		return fmt.Errorf("%w: starting capture: %v", ErrStartFailed, err)
	}

	c.mu.Lock()
	if c.seq != seq || c.state != StatePreparing {
		c.mu.Unlock()
		c.guard.Release()
		c.device.Release(handle)
		c.logger.Info("start discarded before commit")
		return nil
	}
	c.handle = handle
	c.elapsed = 0
	c.state = StateRecording
	c.startTickersLocked()
	c.mu.Unlock()

	c.logger.Info("recording started", "format", c.cfg.Format, "sample_rate", c.cfg.SampleRate)
	return nil
}

// Stop finalizes the active session and returns its artifact. Valid only
// from recording. A session that ended out-of-band is cleaned up and
// reported as ErrNoActiveSession rather than finalized into garbage.
func (c *Controller) Stop(_ context.Context) (Artifact, error) {
	c.mu.Lock()
	if c.debouncedLocked(c.lastStop) {
		c.mu.Unlock()
		return Artifact{}, ErrDebounced
	}
	if c.state != StateRecording {
		c.mu.Unlock()
		return Artifact{}, ErrNoActiveSession
	}
	c.lastStop = c.now()
	c.state = StateStopping
	done := c.stopTickersLocked()
	handle := c.handle
	elapsed := c.elapsed
	c.mu.Unlock()

	if done != nil {
		<-done
	}

	if handle == nil || !handle.Active() {
		c.cleanup()
		c.logger.Warn("stop found no live session, recording lost")
		return Artifact{}, ErrNoActiveSession
	}

	raw, err := c.device.Stop(handle)
	if err != nil {
		c.cleanup()
		return Artifact{}, fmt.Errorf("%w: finalizing capture: %v", ErrStopFailed, err)
	}
	c.cleanup()

	duration := int(raw.DurationMillis / 1000)
	if duration <= 0 {
		// Some sessions report no duration; the tracked counter stands in.
		duration = elapsed
	}

	c.logger.Info("recording stopped", "uri", raw.URI, "duration_s", duration)
	return Artifact{URI: raw.URI, DurationSeconds: duration}, nil
}

// Reset discards any partially prepared state without producing an
// artifact. Invalid while a session is recording or stopping.
func (c *Controller) Reset() error {
	c.mu.Lock()
	if c.state == StateRecording || c.state == StateStopping {
		c.mu.Unlock()
		return ErrNotIdle
	}
	done := c.stopTickersLocked()
	c.handle = nil
	c.elapsed = 0
	c.state = StateIdle
	c.seq++
	c.mu.Unlock()

	if done != nil {
		<-done
	}
	c.guard.Release()
	return nil
}

// Close tears the controller down from any state: timers cleared, guard
// forcibly released, state idle. Errors here are logged and swallowed;
// teardown always reaches idle.
func (c *Controller) Close() {
	c.mu.Lock()
	done := c.stopTickersLocked()
	c.handle = nil
	c.state = StateIdle
	c.seq++
	c.mu.Unlock()

	if done != nil {
		<-done
	}
	c.guard.Release()
	c.logger.Debug("recording controller closed")
}

// cleanup releases all session resources and returns the machine to idle.
// Used on every stop exit path; release errors are swallowed by the guard.
func (c *Controller) cleanup() {
	c.guard.Release()
	c.mu.Lock()
	c.handle = nil
	c.state = StateIdle
	c.mu.Unlock()
}

func (c *Controller) toIdle() {
	c.mu.Lock()
	c.state = StateIdle
	c.mu.Unlock()
}

func (c *Controller) startTickersLocked() {
	c.tickStop = make(chan struct{})
	c.tickDone = make(chan struct{})
	go c.runTickers(c.tickStop, c.tickDone)
}

// stopTickersLocked signals the ticker goroutine and hands back its done
// channel; callers wait on it after releasing the lock.
func (c *Controller) stopTickersLocked() chan struct{} {
	if c.tickStop == nil {
		return nil
	}
	close(c.tickStop)
	c.tickStop = nil
	done := c.tickDone
	c.tickDone = nil
	return done
}

// runTickers owns the elapsed-seconds counter and the amplitude sampler.
// It exits on stop and never outlives a transition away from recording.
func (c *Controller) runTickers(stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.tickPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.state != StateRecording {
				c.mu.Unlock()
				continue
			}
			c.elapsed++
			elapsed := c.elapsed
			c.mu.Unlock()

			if c.onElapsed != nil {
				c.onElapsed(elapsed)
			}
			if c.onAmplitude != nil {
				// The device exposes no live level; emit a deterministic
				// placeholder for UI meters.
				c.onAmplitude(0.35 + 0.3*float64(elapsed%3)/2)
			}
		}
	}
}
