package uv

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"go.uber.org/zap"
	"golang.org/x/image/vector"

	"github.com/Faultbox/texbake/internal/logger"
	"github.com/Faultbox/texbake/internal/scene"
	m "github.com/Faultbox/texbake/pkg/math"
)

// Layout colors: a translucent fill per face with opaque edges on a
// transparent background.
var (
	layoutFill = image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: 64})
	layoutEdge = image.NewUniform(color.NRGBA{A: 255})
)

// edgeWidth is the stroke width of layout edges in pixels.
const edgeWidth = 1

// ExportLayout writes the UV layout of the selected faces as a
// width x height PNG at path.
func (t *Tool) ExportLayout(obj *scene.Object, path string, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrLayoutSize, width, height)
	}
	if obj.Mesh == nil {
		return fmt.Errorf("%w: %s", ErrNoMesh, obj.Name)
	}
	me := obj.Mesh
	if !me.HasUVs() {
		return fmt.Errorf("%w: %s", ErrNoUVs, obj.Name)
	}

	dst := RenderLayout(me, width, height)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if err := png.Encode(file, dst); err != nil {
		file.Close()
		return fmt.Errorf("encoding PNG: %w", err)
	}
	if err := file.Close(); err != nil {
		return err
	}
	logger.Debug("exported UV layout", zap.String("object", obj.Name), zap.String("path", path))
	return nil
}

// RenderLayout rasterizes the selected faces of me. Each face and edge is
// drawn on its own so overlapping faces never cancel out.
func RenderLayout(me *scene.Mesh, width, height int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	toPixel := m.UVToPixel(width, height).Transform2

	faces := me.SelectedFaces()
	ras := &vector.Rasterizer{}
	for _, fi := range faces {
		f := me.Faces[fi]
		pts := make([]m.Vec2, len(f.UVs))
		for i, u := range f.UVs {
			pts[i] = toPixel(me.UVs[u])
		}
		fillPolygon(ras, dst, pts, layoutFill)
	}

	drawn := make(map[[2]int]bool)
	for _, fi := range faces {
		f := me.Faces[fi]
		for i := range f.UVs {
			a, b := f.UVs[i], f.UVs[(i+1)%len(f.UVs)]
			key := [2]int{min(a, b), max(a, b)}
			if drawn[key] {
				continue
			}
			drawn[key] = true
			strokeLine(ras, dst, toPixel(me.UVs[a]), toPixel(me.UVs[b]))
		}
	}
	return dst
}

func strokeLine(ras *vector.Rasterizer, dst *image.NRGBA, a, b m.Vec2) {
	d := b.Sub(a)
	l := d.Length()
	if l == 0 {
		return
	}
	n := m.Vec2{X: -d.Y / l, Y: d.X / l}.Scale(edgeWidth / 2.0)
	fillPolygon(ras, dst, []m.Vec2{a.Add(n), b.Add(n), b.Sub(n), a.Sub(n)}, layoutEdge)
}

// fillPolygon rasterizes pts (pixel coordinates) into the region of dst
// they cover and composites src over it.
func fillPolygon(ras *vector.Rasterizer, dst *image.NRGBA, pts []m.Vec2, src image.Image) {
	if len(pts) < 3 {
		return
	}
	lo, hi := pts[0], pts[0]
	for _, p := range pts[1:] {
		lo, hi = lo.Min(p), hi.Max(p)
	}
	r := image.Rect(
		int(math.Floor(float64(lo.X))), int(math.Floor(float64(lo.Y))),
		int(math.Ceil(float64(hi.X))), int(math.Ceil(float64(hi.Y))),
	)
	clip := r.Intersect(dst.Bounds())
	if clip.Empty() {
		return
	}

	ras.Reset(r.Dx(), r.Dy())
	origin := m.Vec2{X: float32(r.Min.X), Y: float32(r.Min.Y)}
	p := pts[0].Sub(origin)
	ras.MoveTo(p.X, p.Y)
	for _, q := range pts[1:] {
		p = q.Sub(origin)
		ras.LineTo(p.X, p.Y)
	}
	ras.ClosePath()
	ras.Draw(dst, r, src, image.Point{})
}
