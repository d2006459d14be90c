package gpu

import (
	"runtime"
	"testing"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/texbake/internal/bake"
	"github.com/Faultbox/texbake/internal/scene"
)

func testImages(w, h int) (diffuse, rough *scene.Image) {
	diffuse = scene.NewImage("d", w, h, true)
	rough = scene.NewImage("r", w, h, false)
	for i := 0; i < len(diffuse.Pix.Pix); i += 4 {
		n := i / 4
		diffuse.Pix.Pix[i] = uint8(n)
		diffuse.Pix.Pix[i+1] = uint8(n * 3)
		diffuse.Pix.Pix[i+2] = uint8(n * 7)
		diffuse.Pix.Pix[i+3] = 255
		r := uint8(n * 13)
		rough.Pix.Pix[i], rough.Pix.Pix[i+1], rough.Pix.Pix[i+2], rough.Pix.Pix[i+3] = r, r, r, 255
	}
	return diffuse, rough
}

// The GPU output must match the CPU reference byte for byte, including
// row order on non-square images.
func TestPackMatchesCPU(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	c, err := New()
	if err != nil {
		t.Skipf("no OpenGL context available: %v", err)
	}
	defer c.Close()

	for _, size := range [][2]int{{1, 1}, {7, 3}, {64, 32}} {
		gpuDiffuse, rough := testImages(size[0], size[1])
		cpuDiffuse, _ := testImages(size[0], size[1])

		if err := c.Pack(gpuDiffuse, rough); err != nil {
			t.Fatalf("%v: Pack: %v", size, err)
		}
		if err := (bake.CPUCompositor{}).Pack(cpuDiffuse, rough); err != nil {
			t.Fatal(err)
		}
		for i := range cpuDiffuse.Pix.Pix {
			if gpuDiffuse.Pix.Pix[i] != cpuDiffuse.Pix.Pix[i] {
				t.Fatalf("%v: byte %d = %d, want %d", size, i, gpuDiffuse.Pix.Pix[i], cpuDiffuse.Pix.Pix[i])
			}
		}
	}
}

func TestPackReleasesResources(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	c, err := New()
	if err != nil {
		t.Skipf("no OpenGL context available: %v", err)
	}
	defer c.Close()

	for i := 0; i < 2; i++ {
		diffuse, rough := testImages(4, 4)
		if err := c.Pack(diffuse, rough); err != nil {
			t.Fatalf("Pack #%d: %v", i, err)
		}
		var program, vao, fbo int32
		gl.GetIntegerv(gl.CURRENT_PROGRAM, &program)
		gl.GetIntegerv(gl.VERTEX_ARRAY_BINDING, &vao)
		gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &fbo)
		if program != 0 || vao != 0 || fbo != 0 {
			t.Errorf("Pack #%d left program=%d vao=%d framebuffer=%d bound", i, program, vao, fbo)
		}
	}
}

func TestPackSizeMismatch(t *testing.T) {
	// input validation happens before any GL call
	c := &Compositor{}
	d := scene.NewImage("d", 2, 2, true)
	r := scene.NewImage("r", 3, 2, false)
	if err := c.Pack(d, r); err == nil {
		t.Fatal("expected error")
	}
}
