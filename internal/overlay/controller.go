// Package overlay runs the always-visible timer overlay as a separate child
// process. The parent only controls the child's lifetime; nothing else is
// shared between them.
package overlay

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultStopTimeout is how long Stop waits after SIGTERM before killing.
const DefaultStopTimeout = 3 * time.Second

// ErrNoCommand is returned by Start when the controller has no argv.
var ErrNoCommand = errors.New("overlay command is empty")

// Command builds the overlay argv: the optional terminal prefix (split on
// whitespace) followed by exe and the "overlay" subcommand.
func Command(terminal, exe string) []string {
	argv := strings.Fields(terminal)
	return append(argv, exe, "overlay")
}

type child struct {
	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

func (c *child) exited() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Controller starts and stops the overlay process. All methods are safe for
// concurrent use.
type Controller struct {
	argv        []string
	env         []string
	stopTimeout time.Duration
	logger      *zap.Logger

	mu    sync.Mutex
	child *child
}

type Option func(*Controller)

// WithStopTimeout sets the grace period between SIGTERM and kill.
func WithStopTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.stopTimeout = d
		}
	}
}

// WithEnv appends environment variables to the child's environment.
func WithEnv(env ...string) Option {
	return func(c *Controller) { c.env = append(c.env, env...) }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// NewController returns a Controller that launches argv on Start.
func NewController(argv []string, opts ...Option) *Controller {
	c := &Controller{
		argv:        argv,
		stopTimeout: DefaultStopTimeout,
		logger:      zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	c.logger = c.logger.Named("overlay")
	return c
}

// Enabled reports whether the overlay process is alive.
func (c *Controller) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.child != nil && !c.child.exited()
}

// Toggle stops a running overlay or starts a new one. It returns whether the
// overlay is enabled afterwards.
func (c *Controller) Toggle() (bool, error) {
	if c.Enabled() {
		return false, c.Stop()
	}
	if err := c.Start(); err != nil {
		return false, err
	}
	return true, nil
}

// Start launches the overlay. Starting while it is alive is a no-op.
func (c *Controller) Start() error {
	if len(c.argv) == 0 {
		return ErrNoCommand
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.child != nil && !c.child.exited() {
		return nil
	}

	cmd := exec.Command(c.argv[0], c.argv[1:]...)
	cmd.SysProcAttr = sysProcAttr()
	if len(c.env) > 0 {
		cmd.Env = append(cmd.Environ(), c.env...)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting overlay: %w", err)
	}

	ch := &child{cmd: cmd, done: make(chan struct{})}
	c.child = ch
	c.logger.Info("overlay started", zap.Int("pid", cmd.Process.Pid), zap.Strings("argv", c.argv))

	go func() {
		ch.err = cmd.Wait()
		close(ch.done)
		c.logger.Info("overlay exited", zap.Int("pid", cmd.Process.Pid), zap.Error(ch.err))
	}()
	return nil
}

// Stop sends SIGTERM to the overlay's process group and kills it if it has
// not exited within the stop timeout. Stopping when nothing runs is a no-op.
func (c *Controller) Stop() error {
	c.mu.Lock()
	ch := c.child
	c.child = nil
	c.mu.Unlock()

	if ch == nil || ch.exited() {
		return nil
	}

	pid := ch.cmd.Process.Pid
	if err := terminate(pid); err != nil && !IsNoSuchProcess(err) {
		c.logger.Warn("terminate overlay", zap.Int("pid", pid), zap.Error(err))
	}

	timer := time.NewTimer(c.stopTimeout)
	defer timer.Stop()
	select {
	case <-ch.done:
		return nil
	case <-timer.C:
	}

	c.logger.Warn("overlay ignored SIGTERM, killing", zap.Int("pid", pid), zap.Duration("timeout", c.stopTimeout))
	var errs []error
	if err := kill(pid); err != nil && !IsNoSuchProcess(err) {
		errs = append(errs, fmt.Errorf("killing overlay: %w", err))
	}
	<-ch.done
	return errors.Join(errs...)
}
