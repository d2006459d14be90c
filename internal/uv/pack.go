package uv

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/texbake/internal/logger"
	"github.com/Faultbox/texbake/internal/scene"
	m "github.com/Faultbox/texbake/pkg/math"
)

// rotationSteps is the number of angles tried in [0, 90) degrees when
// searching for an island's minimal bounding box.
const rotationSteps = 90

// PackIslands arranges the UV islands of the selected faces inside the
// unit square without overlap. With rotate each island is first turned to
// its minimal-area bounding box. margin is the gap between islands in UV
// units.
func (t *Tool) PackIslands(obj *scene.Object, rotate bool, margin float64) error {
	me, err := editMesh(obj)
	if err != nil {
		return err
	}
	if !me.HasUVs() {
		return ErrNoUVs
	}
	faces := me.SelectedFaces()
	if len(faces) == 0 {
		return nil
	}

	islands := uvIslands(me, faces)
	packIslands(me, islands, rotate, margin, false)
	logger.Debug("packed islands", zap.String("object", obj.Name), zap.Int("islands", len(islands)))
	return nil
}

type placement struct {
	island int
	size   m.Vec2
	offset m.Vec2
}

func packIslands(me *scene.Mesh, islands []island, rotate bool, margin float64, stretch bool) {
	if len(islands) == 0 {
		return
	}

	boxes := make([]placement, len(islands))
	var area float32
	for i, isl := range islands {
		if rotate {
			rotateToMinArea(me, isl.uvs)
		}
		lo, hi := bounds(me, isl.uvs)
		for _, u := range isl.uvs {
			me.UVs[u] = me.UVs[u].Sub(lo)
		}
		size := hi.Sub(lo)
		boxes[i] = placement{island: i, size: size}
		area += size.X * size.Y
	}

	// margin is relative to the packed extent, which is about sqrt(area)
	pad := float32(margin) * float32(math.Sqrt(float64(area)))
	extent := shelfPack(boxes, pad)
	if extent.X <= 0 || extent.Y <= 0 {
		return
	}

	scale := m.Vec2{X: 1 / max(extent.X, extent.Y), Y: 1 / max(extent.X, extent.Y)}
	if stretch {
		scale = m.Vec2{X: 1 / extent.X, Y: 1 / extent.Y}
	}
	for _, b := range boxes {
		for _, u := range islands[b.island].uvs {
			p := me.UVs[u].Add(b.offset)
			me.UVs[u] = m.Vec2{X: p.X * scale.X, Y: p.Y * scale.Y}
		}
	}
}

// shelfPack places boxes in rows, tallest first, and returns the extent
// of the packing. Offsets are written into boxes.
func shelfPack(boxes []placement, pad float32) m.Vec2 {
	order := make([]int, len(boxes))
	var area, widest float32
	for i, b := range boxes {
		order[i] = i
		area += (b.size.X + pad) * (b.size.Y + pad)
		widest = max(widest, b.size.X)
	}
	sort.SliceStable(order, func(i, j int) bool {
		return boxes[order[i]].size.Y > boxes[order[j]].size.Y
	})

	rowWidth := max(float32(math.Sqrt(float64(area))), widest)
	var x, y, rowH float32
	var extent m.Vec2
	for _, i := range order {
		b := &boxes[i]
		if x > 0 && x+b.size.X > rowWidth {
			x = 0
			y += rowH + pad
			rowH = 0
		}
		b.offset = m.Vec2{X: x, Y: y}
		extent = extent.Max(m.Vec2{X: x + b.size.X, Y: y + b.size.Y})
		x += b.size.X + pad
		rowH = max(rowH, b.size.Y)
	}
	return extent
}

// rotateToMinArea rotates the UVs about the origin by the angle giving
// the smallest axis-aligned bounding box.
func rotateToMinArea(me *scene.Mesh, uvs []int) {
	bestAngle, bestArea := 0.0, float32(math.Inf(1))
	for step := 0; step < rotationSteps; step++ {
		angle := float64(step) * (math.Pi / 2) / rotationSteps
		lo := me.UVs[uvs[0]].Rotate(angle)
		hi := lo
		for _, u := range uvs[1:] {
			p := me.UVs[u].Rotate(angle)
			lo, hi = lo.Min(p), hi.Max(p)
		}
		size := hi.Sub(lo)
		if a := size.X * size.Y; a < bestArea-1e-9 {
			bestAngle, bestArea = angle, a
		}
	}
	if bestAngle == 0 {
		return
	}
	for _, u := range uvs {
		me.UVs[u] = me.UVs[u].Rotate(bestAngle)
	}
}
