package deploy

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/dxvk-studio/dxvk-studio/internal/platform"
)

// RunningFunc reports whether a process for exePath is alive.
type RunningFunc func(ctx context.Context, exePath string) (bool, error)

// Engine performs installs, uninstalls and status checks. It holds no
// per-directory state; callers serialize operations on the same directory.
type Engine struct {
	fs           afero.Fs
	logger       zerolog.Logger
	policy       ProtectedPathPolicy
	checkRunning bool
	isRunning    RunningFunc
	now          func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithFs sets the filesystem. Defaults to the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(e *Engine) {
		e.fs = fs
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithPolicy replaces the default protected-path policy.
func WithPolicy(p ProtectedPathPolicy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithRunningCheck enables or disables the running-game guard.
func WithRunningCheck(enabled bool) Option {
	return func(e *Engine) {
		e.checkRunning = enabled
	}
}

// WithRunningFunc overrides process detection.
func WithRunningFunc(fn RunningFunc) Option {
	return func(e *Engine) {
		e.isRunning = fn
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		fs:           afero.NewOsFs(),
		logger:       zerolog.Nop(),
		policy:       NewProtectedPathPolicy(),
		checkRunning: true,
		isRunning:    platform.IsRunning,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the engine's protected-path policy.
func (e *Engine) Policy() ProtectedPathPolicy {
	return e.policy
}

// guardRunning refuses when exePath belongs to a live process. Enumeration
// failures are logged and ignored.
func (e *Engine) guardRunning(ctx context.Context, exePath string) error {
	if !e.checkRunning || e.isRunning == nil || exePath == "" {
		return nil
	}
	running, err := e.isRunning(ctx, exePath)
	if err != nil {
		e.logger.Warn().Err(err).Msg("Could not check for running game, continuing")
		return nil
	}
	if running {
		return fmt.Errorf("%w: %s", ErrGameRunning, exePath)
	}
	return nil
}
