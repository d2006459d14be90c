// Package meshsync hands baked objects to downstream consumers. A Context
// queues objects; sinks deliver them; the Controller runs the periodic
// auto-sync loop and rebakes when source files change.
package meshsync

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/texbake/internal/bake"
	"github.com/Faultbox/texbake/internal/logger"
	"github.com/Faultbox/texbake/internal/scene"
)

// ErrNoSink is returned when flushing a context without a sink.
var ErrNoSink = errors.New("sync context has no sink")

// Update describes one object handed to a sink.
type Update struct {
	ID        string       `yaml:"id"`
	Object    string       `yaml:"object"`
	Width     int          `yaml:"width"`
	Height    int          `yaml:"height"`
	Files     bake.Outputs `yaml:"files"`
	Missing   []string     `yaml:"missing,omitempty"`
	Faces     int          `yaml:"faces"`
	Materials []string     `yaml:"materials"`
	SentAt    time.Time    `yaml:"sent_at"`
}

// Sink delivers updates.
type Sink interface {
	Send(u Update) error
}

// Context collects objects to be sent and delivers them to a sink on
// flush. It implements bake.SyncContext and bake.Preparer and is safe for
// concurrent use.
type Context struct {
	mu      sync.Mutex
	sink    Sink
	cfg     bake.Config
	scene   *scene.Scene
	pending []*scene.Object
	setup   bool
	sent    int
}

var (
	_ bake.SyncContext = (*Context)(nil)
	_ bake.Preparer    = (*Context)(nil)
)

// NewContext creates a context delivering to sink. cfg provides the
// output folder and dimensions reported with each update.
func NewContext(sink Sink, cfg bake.Config) *Context {
	return &Context{sink: sink, cfg: cfg}
}

// SendActiveObject queues obj. An object already queued under the same
// name is replaced, keeping its position.
func (c *Context) SendActiveObject(obj *scene.Object) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, p := range c.pending {
		if p.Name == obj.Name {
			c.pending[i] = obj
			return
		}
	}
	c.pending = append(c.pending, obj)
}

// Pending returns the names of queued objects in send order.
func (c *Context) Pending() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, len(c.pending))
	for i, p := range c.pending {
		names[i] = p.Name
	}
	return names
}

// FlushPending delivers queued objects in order. Delivery stops at the
// first failure; that object and everything after it stay queued.
func (c *Context) FlushPending() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pending) == 0 {
		return nil
	}
	if c.sink == nil {
		return ErrNoSink
	}

	for len(c.pending) > 0 {
		obj := c.pending[0]
		if err := c.sink.Send(c.update(obj)); err != nil {
			return fmt.Errorf("sending %s: %w", obj.Name, err)
		}
		c.pending = c.pending[1:]
		c.sent++
	}
	return nil
}

func (c *Context) update(obj *scene.Object) Update {
	u := Update{
		ID:     uuid.NewString(),
		Object: obj.Name,
		Width:  c.cfg.Width,
		Height: c.cfg.Height,
		Files:  bake.OutputsFor(c.cfg.OutputFolder, obj.Name),
		SentAt: time.Now().UTC(),
	}
	for _, path := range u.Files.All() {
		if _, err := os.Stat(path); err != nil {
			u.Missing = append(u.Missing, path)
		}
	}
	if obj.Mesh != nil {
		u.Faces = len(obj.Mesh.Faces)
	}
	for _, mat := range obj.Materials {
		if mat != nil {
			u.Materials = append(u.Materials, mat.Name)
		}
	}
	return u
}

// Setup binds the context to a scene.
func (c *Context) Setup(sc *scene.Scene) error {
	if sc == nil {
		return errors.New("setup: nil scene")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scene = sc
	c.setup = true
	logger.Debug("sync context set up", zap.Int("objects", len(sc.Objects)))
	return nil
}

// IsSetup reports whether Setup has been called since the last Destroy.
func (c *Context) IsSetup() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setup
}

// Sent returns the number of updates delivered.
func (c *Context) Sent() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sent
}

// Destroy drops queued objects and the scene binding.
func (c *Context) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pending) > 0 {
		logger.Warn("dropping unsent objects", zap.Int("count", len(c.pending)))
	}
	c.pending = nil
	c.scene = nil
	c.setup = false
}
