package capture

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

const stopTimeout = 5 * time.Second

// FFmpegDevice captures from the default system input via an ffmpeg child
// process. One process per session; stop is SIGINT with a kill fallback so
// ffmpeg can finalize the container.
type FFmpegDevice struct {
	Dir    string // output directory for takes
	Input  string // ffmpeg input device, e.g. "default"
	Format string // ffmpeg input format, e.g. "pulse" or "avfoundation"
	Logger *slog.Logger
}

// NewFFmpegDevice creates a device writing takes into dir, reading from the
// default PulseAudio source.
func NewFFmpegDevice(dir string, logger *slog.Logger) *FFmpegDevice {
	if logger == nil {
		logger = slog.Default()
	}
	return &FFmpegDevice{
		Dir:    dir,
		Input:  "default",
		Format: "pulse",
		Logger: logger,
	}
}

type ffmpegHandle struct {
	cmd     *exec.Cmd
	path    string
	logger  *slog.Logger
	started time.Time

	mu       sync.Mutex
	running  bool
	released bool
}

// Active implements Handle.
func (h *ffmpegHandle) Active() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.running && h.cmd.ProcessState == nil
}

// RequestPermission implements Device. There is no OS permission prompt to
// drive from a headless process; a reachable ffmpeg binary is the grant.
func (d *FFmpegDevice) RequestPermission(_ context.Context) (bool, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return false, nil
	}
	return true, nil
}

// Prepare implements Device. The process is built but not started.
func (d *FFmpegDevice) Prepare(_ context.Context, cfg Config) (Handle, error) {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(d.Dir, uuid.NewString()+"."+cfg.Format)

	args := []string{
		"-f", d.Format,
		"-i", d.Input,
		"-ac", fmt.Sprintf("%d", cfg.Channels),
		"-ar", fmt.Sprintf("%d", cfg.SampleRate),
		"-b:a", fmt.Sprintf("%d", cfg.BitRate),
		"-y",
		path,
	}
	cmd := exec.Command("ffmpeg", args...)

	d.Logger.Debug("prepared capture session", "output", path, "format", cfg.Format, "sample_rate", cfg.SampleRate)

	return &ffmpegHandle{
		cmd:    cmd,
		path:   path,
		logger: d.Logger,
	}, nil
}

// Start implements Device.
func (d *FFmpegDevice) Start(h Handle) error {
	fh, ok := h.(*ffmpegHandle)
	if !ok {
		return fmt.Errorf("foreign handle %T", h)
	}

	fh.mu.Lock()
	defer fh.mu.Unlock()

	if fh.released {
		return fmt.Errorf("handle already released")
	}
	if err := fh.cmd.Start(); err != nil {
		return fmt.Errorf("starting ffmpeg: %w", err)
	}
	fh.running = true
	fh.started = time.Now()

	d.Logger.Info("capture started", "output", fh.path)
	return nil
}

// Stop implements Device.
func (d *FFmpegDevice) Stop(h Handle) (Artifact, error) {
	fh, ok := h.(*ffmpegHandle)
	if !ok {
		return Artifact{}, fmt.Errorf("foreign handle %T", h)
	}

	fh.mu.Lock()
	if !fh.running {
		fh.mu.Unlock()
		return Artifact{}, fmt.Errorf("session not running")
	}
	fh.running = false
	started := fh.started
	fh.mu.Unlock()

	if err := stopProcess(fh.cmd, d.Logger); err != nil {
		return Artifact{}, err
	}

	elapsed := time.Since(started)
	d.Logger.Info("capture stopped", "output", fh.path, "elapsed", elapsed)

	return Artifact{
		URI:            fh.path,
		DurationMillis: elapsed.Milliseconds(),
	}, nil
}

// Release implements Device. Safe on stopped, failed, or foreign handles.
func (d *FFmpegDevice) Release(h Handle) {
	fh, ok := h.(*ffmpegHandle)
	if !ok || fh == nil {
		return
	}

	fh.mu.Lock()
	defer fh.mu.Unlock()

	if fh.released {
		return
	}
	fh.released = true

	if fh.running && fh.cmd.Process != nil {
		fh.running = false
		fh.cmd.Process.Kill()
		fh.cmd.Wait()
	}

	d.Logger.Debug("capture handle released", "output", fh.path)
}

// stopProcess interrupts ffmpeg and waits for it to exit, force-killing after
// a timeout. A signal-driven exit is a normal stop, not a failure.
func stopProcess(cmd *exec.Cmd, logger *slog.Logger) error {
	if cmd.Process == nil {
		return nil
	}

	if err := cmd.Process.Signal(os.Interrupt); err != nil {
		logger.Debug("interrupt failed, killing", "error", err)
		cmd.Process.Kill()
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			if exitErr, ok := err.(*exec.ExitError); ok {
				state := exitErr.ProcessState.String()
				if exitErr.ExitCode() == 255 || state == "signal: interrupt" || state == "signal: killed" {
					return nil
				}
			}
			return fmt.Errorf("ffmpeg process failed: %w", err)
		}
		return nil

	case <-time.After(stopTimeout):
		logger.Warn("ffmpeg did not exit within timeout, force killing")
		cmd.Process.Kill()
		<-done
		return nil
	}
}
