// Package window creates the SDL2 window that owns an OpenGL context.
// texbake only renders off-screen, so the window is normally hidden.
package window

import (
	"fmt"
	"runtime"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/texbake/internal/logger"
)

func init() {
	// GL contexts belong to the thread that created them
	runtime.LockOSThread()
}

// Config holds window configuration.
type Config struct {
	Title  string
	Width  int
	Height int
	Hidden bool
}

// glAttributes request an OpenGL 4.1 core context (the newest macOS
// offers) with an 8-bit RGBA default framebuffer.
var glAttributes = []struct {
	attr  sdl.GLattr
	value int
}{
	{sdl.GL_CONTEXT_MAJOR_VERSION, 4},
	{sdl.GL_CONTEXT_MINOR_VERSION, 1},
	{sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE},
	{sdl.GL_RED_SIZE, 8},
	{sdl.GL_GREEN_SIZE, 8},
	{sdl.GL_BLUE_SIZE, 8},
	{sdl.GL_ALPHA_SIZE, 8},
}

// Window is an SDL2 window with a GL context current on the thread that
// created it.
type Window struct {
	title string
	win   *sdl.Window
	ctx   sdl.GLContext
}

// New initializes SDL video and creates the window and its context.
func New(cfg Config) (*Window, error) {
	if err := sdl.InitSubSystem(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("initializing SDL video: %w", err)
	}
	for _, a := range glAttributes {
		if err := sdl.GLSetAttribute(a.attr, a.value); err != nil {
			sdl.QuitSubSystem(sdl.INIT_VIDEO)
			return nil, fmt.Errorf("setting GL attribute %d: %w", a.attr, err)
		}
	}

	flags := uint32(sdl.WINDOW_OPENGL)
	if cfg.Hidden {
		flags |= sdl.WINDOW_HIDDEN
	}
	win, err := sdl.CreateWindow(cfg.Title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(max(cfg.Width, 1)), int32(max(cfg.Height, 1)), flags)
	if err != nil {
		sdl.QuitSubSystem(sdl.INIT_VIDEO)
		return nil, fmt.Errorf("creating window: %w", err)
	}

	ctx, err := win.GLCreateContext()
	if err != nil {
		win.Destroy()
		sdl.QuitSubSystem(sdl.INIT_VIDEO)
		return nil, fmt.Errorf("creating GL context: %w", err)
	}

	logger.Debug("GL context created",
		zap.String("title", cfg.Title),
		zap.Bool("hidden", cfg.Hidden))
	return &Window{title: cfg.Title, win: win, ctx: ctx}, nil
}

// Close deletes the context and window. It is safe to call twice.
func (w *Window) Close() {
	if w.win == nil {
		return
	}
	sdl.GLDeleteContext(w.ctx)
	w.win.Destroy()
	w.win, w.ctx = nil, nil
	sdl.QuitSubSystem(sdl.INIT_VIDEO)
	logger.Debug("GL context closed", zap.String("title", w.title))
}
