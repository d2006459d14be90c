// Package baker is a software bake engine. It rasterizes each triangle of
// an object in UV space into the active image of the triangle's material
// and evaluates the requested pass per texel.
package baker

import (
	"errors"
	"fmt"
	"image/color"
	"math/rand/v2"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/texbake/internal/bake"
	"github.com/Faultbox/texbake/internal/logger"
	"github.com/Faultbox/texbake/internal/scene"
)

var (
	ErrNoMesh           = errors.New("object has no mesh")
	ErrNoUVs            = errors.New("mesh has no UV layer")
	ErrNoBakeTarget     = errors.New("material has no active image to bake to")
	ErrUnknownPass      = errors.New("unknown bake type")
	ErrSelectedToActive = errors.New("selected to active is not supported")
)

// clearColor is what images are filled with before baking when
// UseClear is set.
var clearColor = color.NRGBA{A: 255}

// Engine bakes passes on the CPU. The zero value is ready to use.
type Engine struct {
	// Workers is the number of goroutines shading rows. Zero means
	// runtime.NumCPU().
	Workers int
	// Seed makes AO sampling reproducible.
	Seed uint64
}

// New creates an engine using all CPUs.
func New() *Engine {
	return &Engine{}
}

// target is one image receiving texels from one or more materials.
type target struct {
	img    *scene.Image
	texels []texel // w*h, row-major, top row first
}

// texel records which triangle covers a pixel center and where.
type texel struct {
	tri  int32 // -1 when uncovered
	bary [3]float32
}

// Bake implements bake.Engine.
func (e *Engine) Bake(sc *scene.Scene, obj *scene.Object, opts bake.Options) error {
	if opts.UseSelectedToActive {
		return ErrSelectedToActive
	}
	if obj.Mesh == nil {
		return fmt.Errorf("%w: %s", ErrNoMesh, obj.Name)
	}
	if !obj.Mesh.HasUVs() {
		return fmt.Errorf("%w: %s", ErrNoUVs, obj.Name)
	}

	var shade shadeFunc
	switch opts.Type {
	case bake.TypeDiffuse:
		if sc.Bake.UsePassDirect || sc.Bake.UsePassIndirect {
			logger.Debug("lighting contributions are not baked, only the color pass",
				zap.String("object", obj.Name))
		}
		shade = diffuseShader(sc.Bake.UsePassColor)
	case bake.TypeRoughness:
		shade = roughnessShader
	case bake.TypeAO:
		shade = newAOShader(obj.Mesh, sc.Render.Samples, sc.World.AODistance)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownPass, opts.Type)
	}

	start := time.Now()
	tris := obj.Mesh.Triangles()
	targets, err := rasterize(obj, tris)
	if err != nil {
		return err
	}

	for _, t := range targets {
		if opts.UseClear {
			t.img.Fill(clearColor)
		}
		e.shadeRows(t, obj, tris, shade)
		dilate(t.img, t.texels, sc.Bake.Margin)
	}

	logger.Debug("baked pass",
		zap.String("object", obj.Name),
		zap.String("type", string(opts.Type)),
		zap.Int("images", len(targets)),
		zap.Int("triangles", len(tris)),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// rasterize records, per target image, which triangle covers each pixel
// center. A later triangle wins where triangles overlap in UV space.
func rasterize(obj *scene.Object, tris []scene.Triangle) ([]*target, error) {
	byImage := make(map[*scene.Image]*target)
	var order []*target

	for ti, tri := range tris {
		var mat *scene.Material
		if tri.Material >= 0 && tri.Material < len(obj.Materials) {
			mat = obj.Materials[tri.Material]
		}
		img := mat.ActiveImage()
		if img == nil {
			name := "<empty slot>"
			if mat != nil {
				name = mat.Name
			}
			return nil, fmt.Errorf("%w: %s", ErrNoBakeTarget, name)
		}

		t, ok := byImage[img]
		if !ok {
			t = &target{img: img, texels: make([]texel, img.Width()*img.Height())}
			for i := range t.texels {
				t.texels[i].tri = -1
			}
			byImage[img] = t
			order = append(order, t)
		}
		rasterizeTriangle(t, obj.Mesh, tri, int32(ti))
	}
	return order, nil
}

func rasterizeTriangle(t *target, me *scene.Mesh, tri scene.Triangle, index int32) {
	w, h := t.img.Width(), t.img.Height()
	var px, py [3]float32
	for i := 0; i < 3; i++ {
		uv := me.UVs[tri.UV[i]]
		px[i] = uv.X * float32(w)
		py[i] = (1 - uv.Y) * float32(h)
	}

	area := edge(px[0], py[0], px[1], py[1], px[2], py[2])
	if area == 0 {
		return
	}

	x0 := max(0, int(min(px[0], px[1], px[2])))
	x1 := min(w-1, int(max(px[0], px[1], px[2])))
	y0 := max(0, int(min(py[0], py[1], py[2])))
	y1 := min(h-1, int(max(py[0], py[1], py[2])))

	const eps = -1e-6
	for y := y0; y <= y1; y++ {
		cy := float32(y) + 0.5
		for x := x0; x <= x1; x++ {
			cx := float32(x) + 0.5
			b0 := edge(px[1], py[1], px[2], py[2], cx, cy) / area
			b1 := edge(px[2], py[2], px[0], py[0], cx, cy) / area
			b2 := 1 - b0 - b1
			if b0 < eps || b1 < eps || b2 < eps {
				continue
			}
			t.texels[y*w+x] = texel{tri: index, bary: [3]float32{b0, b1, b2}}
		}
	}
}

func edge(ax, ay, bx, by, cx, cy float32) float32 {
	return (bx-ax)*(cy-ay) - (by-ay)*(cx-ax)
}

// shadeRows evaluates shade for every covered texel, splitting rows
// across workers.
func (e *Engine) shadeRows(t *target, obj *scene.Object, tris []scene.Triangle, shade shadeFunc) {
	w, h := t.img.Width(), t.img.Height()
	workers := e.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	rowsPerWorker := (h + workers - 1) / workers

	var wg sync.WaitGroup
	for wk := 0; wk < workers; wk++ {
		startRow := wk * rowsPerWorker
		endRow := min(startRow+rowsPerWorker, h)
		if startRow >= endRow {
			continue
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for y := start; y < end; y++ {
				ctx := rowContext{obj: obj, rng: rand.New(rand.NewPCG(e.Seed, uint64(y)))}
				for x := 0; x < w; x++ {
					tx := t.texels[y*w+x]
					if tx.tri < 0 {
						continue
					}
					ctx.tri = tris[tx.tri]
					ctx.bary = tx.bary
					ctx.u = (float32(x) + 0.5) / float32(w)
					ctx.v = 1 - (float32(y)+0.5)/float32(h)
					t.img.Pix.SetNRGBA(x, y, shade(&ctx))
				}
			}
		}(startRow, endRow)
	}
	wg.Wait()
}

// ensure the engine satisfies the pipeline contract
var _ bake.Engine = (*Engine)(nil)
