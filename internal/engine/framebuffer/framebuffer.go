// Package framebuffer provides an off-screen RGBA8 render target whose
// contents can be read back to client memory.
package framebuffer

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// ErrIncomplete is returned when the driver rejects the attachment setup.
var ErrIncomplete = errors.New("framebuffer incomplete")

// Framebuffer renders into a color renderbuffer. It is only read back,
// never sampled, so no texture is attached.
type Framebuffer struct {
	fbo    uint32
	color  uint32 // renderbuffer
	width  int32
	height int32
}

// New allocates a width x height target. A GL context must be current.
func New(width, height int32) (*Framebuffer, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("invalid framebuffer size %dx%d", width, height)
	}
	fb := &Framebuffer{width: width, height: height}

	gl.GenRenderbuffers(1, &fb.color)
	gl.BindRenderbuffer(gl.RENDERBUFFER, fb.color)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.RGBA8, width, height)
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)

	gl.GenFramebuffers(1, &fb.fbo)
	restore := fb.bind()
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.RENDERBUFFER, fb.color)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	restore()

	if status != gl.FRAMEBUFFER_COMPLETE {
		fb.Destroy()
		return nil, fmt.Errorf("%w: status 0x%x", ErrIncomplete, status)
	}
	return fb, nil
}

// bind makes fb the draw and read target and returns a function that
// rebinds whatever was bound before.
func (fb *Framebuffer) bind() func() {
	var prev int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &prev)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)
	return func() { gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prev)) }
}

// BindWithViewport binds the framebuffer with a viewport covering all of
// it. The returned function restores the previous binding and viewport.
func (fb *Framebuffer) BindWithViewport() func() {
	var viewport [4]int32
	gl.GetIntegerv(gl.VIEWPORT, &viewport[0])
	unbind := fb.bind()
	gl.Viewport(0, 0, fb.width, fb.height)

	return func() {
		unbind()
		gl.Viewport(viewport[0], viewport[1], viewport[2], viewport[3])
	}
}

// Clear fills the bound color attachment.
func (fb *Framebuffer) Clear(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

// ReadPixels returns the color attachment as tightly packed RGBA bytes,
// row 0 first. Fragments written at gl_FragCoord.y = 0.5 land in row 0.
func (fb *Framebuffer) ReadPixels() ([]byte, error) {
	pixels := make([]byte, int(fb.width)*int(fb.height)*4)

	restore := fb.bind()
	defer restore()
	gl.ReadBuffer(gl.COLOR_ATTACHMENT0)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, fb.width, fb.height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	if e := gl.GetError(); e != gl.NO_ERROR {
		return nil, fmt.Errorf("reading pixels: GL error 0x%x", e)
	}
	return pixels, nil
}

// Destroy releases the GL objects. It is safe to call more than once.
func (fb *Framebuffer) Destroy() {
	if fb.fbo != 0 {
		gl.DeleteFramebuffers(1, &fb.fbo)
		fb.fbo = 0
	}
	if fb.color != 0 {
		gl.DeleteRenderbuffers(1, &fb.color)
		fb.color = 0
	}
}
