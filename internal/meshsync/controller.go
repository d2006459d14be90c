package meshsync

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/texbake/internal/logger"
)

// DefaultInterval is the auto-sync tick period.
const DefaultInterval = time.Second / 3

var (
	ErrAlreadyRunning = errors.New("auto sync is already running")
	ErrNotRunning     = errors.New("auto sync is not running")
)

// State is the auto-sync state.
type State int

const (
	StateIdle State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "idle"
}

// UpdateFunc re-exports objects whose sources changed. It runs on the
// goroutine that called Run.
type UpdateFunc func(changed []string) error

// Controller is the auto-sync loop. While running, each tick flushes the
// sync context and, when any watched file changed since the last tick,
// calls the update function with the changed paths.
type Controller struct {
	mu       sync.Mutex
	state    State
	sync     *Context
	update   UpdateFunc
	interval time.Duration
	sources  map[string]bool
	watcher  *fsnotify.Watcher
	dirty    map[string]bool
	stop     chan struct{}
}

// NewController creates an idle controller. interval <= 0 selects
// DefaultInterval.
func NewController(ctx *Context, update UpdateFunc, interval time.Duration) *Controller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Controller{
		sync:     ctx,
		update:   update,
		interval: interval,
		sources:  make(map[string]bool),
		dirty:    make(map[string]bool),
	}
}

// Watch adds source files whose changes trigger an update. When running,
// their directories are added to the watcher right away.
func (c *Controller) Watch(paths ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		p = filepath.Clean(p)
		if c.sources[p] {
			continue
		}
		c.sources[p] = true
		if c.watcher != nil {
			if err := c.watcher.Add(filepath.Dir(p)); err != nil {
				logger.Warn("cannot watch source", zap.String("path", p), zap.Error(err))
			}
		}
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start moves from idle to running and begins watching sources.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateRunning {
		return ErrAlreadyRunning
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	// watch directories: editors often replace files instead of writing
	dirs := make(map[string]bool)
	for p := range c.sources {
		dirs[filepath.Dir(p)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	c.watcher = watcher
	c.stop = make(chan struct{})
	c.dirty = make(map[string]bool)
	c.state = StateRunning
	logger.Info("auto sync started",
		zap.Int("sources", len(c.sources)),
		zap.Duration("interval", c.interval))
	return nil
}

// Stop moves from running to idle. A blocked Run returns.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateRunning {
		return ErrNotRunning
	}
	close(c.stop)
	c.watcher.Close()
	c.watcher = nil
	c.state = StateIdle
	logger.Info("auto sync stopped")
	return nil
}

// Toggle starts an idle controller or stops a running one and returns
// the new state.
func (c *Controller) Toggle() (State, error) {
	if c.State() == StateRunning {
		return StateIdle, c.Stop()
	}
	if err := c.Start(); err != nil {
		return StateIdle, err
	}
	return StateRunning, nil
}

// Run processes ticks and file events on the calling goroutine until ctx
// is done or Stop is called. When ctx ends the controller is stopped.
func (c *Controller) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		return ErrNotRunning
	}
	stop, watcher := c.stop, c.watcher
	c.mu.Unlock()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	events, watchErrs := watcher.Events, watcher.Errors

	for {
		select {
		case <-ctx.Done():
			if err := c.Stop(); err != nil && !errors.Is(err, ErrNotRunning) {
				return err
			}
			return ctx.Err()
		case <-stop:
			return nil
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			c.handleEvent(ev)
		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			logger.Warn("file watcher error", zap.Error(err))
		case <-ticker.C:
			if err := c.Tick(); err != nil {
				logger.Error("auto sync update failed", zap.Error(err))
			}
		}
	}
}

func (c *Controller) handleEvent(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return
	}
	path := filepath.Clean(ev.Name)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sources[path] {
		c.dirty[path] = true
		logger.Debug("source changed", zap.String("path", path), zap.String("op", ev.Op.String()))
	}
}

// Tick runs one auto-sync update: flush queued objects, then update
// changed sources. Objects queued by the update are sent on the next
// tick.
func (c *Controller) Tick() error {
	if err := c.sync.FlushPending(); err != nil {
		return err
	}

	c.mu.Lock()
	changed := make([]string, 0, len(c.dirty))
	for p := range c.dirty {
		changed = append(changed, p)
	}
	c.dirty = make(map[string]bool)
	c.mu.Unlock()

	if len(changed) == 0 || c.update == nil {
		return nil
	}
	sort.Strings(changed)
	return c.update(changed)
}
