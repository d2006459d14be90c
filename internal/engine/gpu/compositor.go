// Package gpu packs bake images on the GPU through an offscreen OpenGL
// context.
package gpu

import (
	"fmt"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/texbake/internal/bake"
	"github.com/Faultbox/texbake/internal/engine/framebuffer"
	"github.com/Faultbox/texbake/internal/engine/shader"
	"github.com/Faultbox/texbake/internal/engine/window"
	"github.com/Faultbox/texbake/internal/logger"
	"github.com/Faultbox/texbake/internal/scene"
	"github.com/Faultbox/texbake/pkg/math"
)

// fullscreen quad as a triangle strip in normalized device coordinates
var quadVertices = []float32{
	-1, -1,
	1, -1,
	-1, 1,
	1, 1,
}

// Compositor implements bake.Compositor with a fragment shader. It owns a
// hidden window whose GL context must stay on the thread that created it:
// every method has to be called from that thread. The packing program and
// quad exist only for the duration of one Pack call.
type Compositor struct {
	win *window.Window
}

var _ bake.Compositor = (*Compositor)(nil)

// New creates a hidden GL context.
func New() (*Compositor, error) {
	win, err := window.New(window.Config{Title: "texbake", Width: 1, Height: 1, Hidden: true})
	if err != nil {
		return nil, fmt.Errorf("creating GL context: %w", err)
	}
	if err := gl.Init(); err != nil {
		win.Close()
		return nil, fmt.Errorf("initializing OpenGL: %w", err)
	}
	logger.Debug("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))
	return &Compositor{win: win}, nil
}

// quad is the vertex array and buffer of the fullscreen strip.
type quad struct {
	vao, vbo uint32
}

func newQuad() quad {
	var q quad
	gl.GenVertexArrays(1, &q.vao)
	gl.BindVertexArray(q.vao)

	gl.GenBuffers(1, &q.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, q.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)

	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 2*4, 0)
	gl.EnableVertexAttribArray(0)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return q
}

func (q *quad) draw() {
	gl.BindVertexArray(q.vao)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	gl.BindVertexArray(0)
}

func (q *quad) delete() {
	gl.DeleteBuffers(1, &q.vbo)
	gl.DeleteVertexArrays(1, &q.vao)
}

// Pack writes rgb = diffuse.rgb and alpha = 255 - rough.r into diffuse.
func (c *Compositor) Pack(diffuse, rough *scene.Image) error {
	if err := bake.CheckPackInputs(diffuse, rough); err != nil {
		return err
	}
	start := time.Now()
	w, h := int32(diffuse.Width()), int32(diffuse.Height())

	fb, err := framebuffer.New(w, h)
	if err != nil {
		return err
	}
	defer fb.Destroy()

	colorTex := uploadTexture(diffuse)
	defer gl.DeleteTextures(1, &colorTex)
	roughTex := uploadTexture(rough)
	defer gl.DeleteTextures(1, &roughTex)

	program, err := shader.Compile(packVertexShader, packFragmentShader)
	if err != nil {
		return fmt.Errorf("compiling pack shader: %w", err)
	}
	defer program.Delete()
	q := newQuad()
	defer q.delete()

	restore := fb.BindWithViewport()
	defer restore()

	gl.Disable(gl.BLEND)
	gl.Disable(gl.DEPTH_TEST)
	fb.Clear(0, 0, 0, 0)

	// the quad is already in clip space
	modelView, projection := math.Identity(), math.Identity()

	program.Use()
	defer gl.UseProgram(0)
	for _, set := range []func() error{
		func() error { return program.SetMat4("uModelView", modelView) },
		func() error { return program.SetMat4("uProjection", projection) },
		func() error { return program.SetInt("uColor", 0) },
		func() error { return program.SetInt("uRoughness", 1) },
	} {
		if err := set(); err != nil {
			return fmt.Errorf("pack shader: %w", err)
		}
	}

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, colorTex)
	gl.ActiveTexture(gl.TEXTURE1)
	gl.BindTexture(gl.TEXTURE_2D, roughTex)
	defer func() {
		gl.ActiveTexture(gl.TEXTURE1)
		gl.BindTexture(gl.TEXTURE_2D, 0)
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, 0)
	}()

	q.draw()

	if glErr := gl.GetError(); glErr != gl.NO_ERROR {
		return fmt.Errorf("pack draw: GL error 0x%x", glErr)
	}

	pixels, err := fb.ReadPixels()
	if err != nil {
		return err
	}
	if err := diffuse.SetPixels(pixels); err != nil {
		return fmt.Errorf("reading back packed pixels: %w", err)
	}
	logger.Debug("packed on GPU",
		zap.String("image", diffuse.Name),
		zap.Int32("width", w),
		zap.Int32("height", h),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// uploadTexture copies an image into a nearest-filtered RGBA8 texture.
// Row 0 of the image becomes texture row 0.
func uploadTexture(img *scene.Image) uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8,
		int32(img.Width()), int32(img.Height()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix.Pix))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return tex
}

// Close releases the GL context.
func (c *Compositor) Close() {
	if c.win != nil {
		c.win.Close()
		c.win = nil
	}
}
