package picking

import (
	"sort"

	"github.com/Faultbox/texbake/pkg/math"
)

// maxLeafSize is the triangle count below which nodes are not split.
const maxLeafSize = 4

// Triangle is a BVH primitive.
type Triangle struct {
	A, B, C math.Vec3
}

func (t Triangle) bounds() AABB {
	return EmptyAABB().Grow(t.A).Grow(t.B).Grow(t.C)
}

func (t Triangle) centroid() math.Vec3 {
	return t.A.Add(t.B).Add(t.C).Scale(1.0 / 3)
}

type bvhNode struct {
	box          AABB
	left, right  int // child node indices; -1 for leaves
	first, count int // triangle range for leaves
}

// BVH is a bounding volume hierarchy over a static triangle set. It is
// safe for concurrent queries once built.
type BVH struct {
	tris  []Triangle
	nodes []bvhNode
}

// NewBVH builds a hierarchy by median split along the longest axis.
func NewBVH(tris []Triangle) *BVH {
	b := &BVH{tris: append([]Triangle(nil), tris...)}
	if len(b.tris) > 0 {
		b.build(0, len(b.tris))
	}
	return b
}

// Len returns the number of triangles.
func (b *BVH) Len() int { return len(b.tris) }

func (b *BVH) build(first, count int) int {
	box := EmptyAABB()
	centers := EmptyAABB()
	for _, t := range b.tris[first : first+count] {
		box = box.Union(t.bounds())
		centers = centers.Grow(t.centroid())
	}

	idx := len(b.nodes)
	b.nodes = append(b.nodes, bvhNode{box: box, left: -1, right: -1, first: first, count: count})
	if count <= maxLeafSize {
		return idx
	}

	axis := centers.LongestAxis()
	span := b.tris[first : first+count]
	sort.Slice(span, func(i, j int) bool {
		return span[i].centroid().Axis(axis) < span[j].centroid().Axis(axis)
	})
	half := count / 2
	left := b.build(first, half)
	right := b.build(first+half, count-half)
	b.nodes[idx].left = left
	b.nodes[idx].right = right
	b.nodes[idx].count = 0
	return idx
}

// Occluded reports whether the ray hits any triangle within (0, maxT).
func (b *BVH) Occluded(r Ray, maxT float32) bool {
	_, hit := b.intersect(r, maxT, true)
	return hit
}

// Intersect returns the distance to the nearest hit within (0, maxT).
func (b *BVH) Intersect(r Ray, maxT float32) (float32, bool) {
	return b.intersect(r, maxT, false)
}

func (b *BVH) intersect(r Ray, maxT float32, anyHit bool) (float32, bool) {
	if len(b.nodes) == 0 {
		return 0, false
	}
	var stack [64]int
	sp := 0
	stack[sp] = 0
	sp++

	best := maxT
	found := false
	for sp > 0 {
		sp--
		n := &b.nodes[stack[sp]]
		if _, ok := r.IntersectAABB(n.box, best); !ok {
			continue
		}
		if n.left < 0 {
			for _, t := range b.tris[n.first : n.first+n.count] {
				d, ok := r.IntersectTriangle(t.A, t.B, t.C)
				if !ok || d >= best {
					continue
				}
				if anyHit {
					return d, true
				}
				best, found = d, true
			}
			continue
		}
		stack[sp] = n.left
		stack[sp+1] = n.right
		sp += 2
	}
	return best, found
}
