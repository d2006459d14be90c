package scene

import (
	m "github.com/Faultbox/texbake/pkg/math"
)

// SelectMode is the element type edit-mode selection operates on.
type SelectMode int

const (
	SelectVertex SelectMode = iota
	SelectEdge
	SelectFace
)

// Face is a polygon. Vertices index Mesh.Positions and UVs index Mesh.UVs,
// one entry per corner.
type Face struct {
	Vertices []int
	UVs      []int
	Material int // material slot index
	Selected bool
}

// Edge is an undirected edge between two position indices with A < B.
type Edge struct {
	A, B int
}

// MakeEdge returns the canonical edge for two vertex indices.
func MakeEdge(a, b int) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{a, b}
}

// Triangle is one triangle of a fan-triangulated face.
type Triangle struct {
	Face     int
	V        [3]int // position indices
	UV       [3]int // uv indices
	Material int
}

// Mesh is polygon geometry with a single UV layer.
type Mesh struct {
	Positions []m.Vec3
	UVs       []m.Vec2
	Faces     []Face

	// Seams marks edges that delimit UV islands.
	Seams      map[Edge]bool
	SelectMode SelectMode
}

// HasUVs reports whether every face corner references a UV.
func (me *Mesh) HasUVs() bool {
	if len(me.UVs) == 0 {
		return false
	}
	for _, f := range me.Faces {
		if len(f.UVs) != len(f.Vertices) {
			return false
		}
	}
	return true
}

// Triangles fan-triangulates every face.
func (me *Mesh) Triangles() []Triangle {
	var tris []Triangle
	for fi, f := range me.Faces {
		for i := 1; i+1 < len(f.Vertices); i++ {
			t := Triangle{
				Face:     fi,
				V:        [3]int{f.Vertices[0], f.Vertices[i], f.Vertices[i+1]},
				Material: f.Material,
			}
			if len(f.UVs) == len(f.Vertices) {
				t.UV = [3]int{f.UVs[0], f.UVs[i], f.UVs[i+1]}
			}
			tris = append(tris, t)
		}
	}
	return tris
}

// FaceNormal returns the unit normal of a face using Newell's method.
func (me *Mesh) FaceNormal(fi int) m.Vec3 {
	f := me.Faces[fi]
	var n m.Vec3
	for i := range f.Vertices {
		a := me.Positions[f.Vertices[i]]
		b := me.Positions[f.Vertices[(i+1)%len(f.Vertices)]]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return n.Normalize()
}

// FaceArea returns the area of a (planar) face.
func (me *Mesh) FaceArea(fi int) float32 {
	f := me.Faces[fi]
	var sum m.Vec3
	p0 := me.Positions[f.Vertices[0]]
	for i := 1; i+1 < len(f.Vertices); i++ {
		a := me.Positions[f.Vertices[i]].Sub(p0)
		b := me.Positions[f.Vertices[i+1]].Sub(p0)
		sum = sum.Add(a.Cross(b))
	}
	return sum.Length() / 2
}

// FaceEdges returns the edges of a face in corner order.
func (me *Mesh) FaceEdges(fi int) []Edge {
	f := me.Faces[fi]
	edges := make([]Edge, len(f.Vertices))
	for i := range f.Vertices {
		edges[i] = MakeEdge(f.Vertices[i], f.Vertices[(i+1)%len(f.Vertices)])
	}
	return edges
}

// EdgeFaces maps each edge to the faces using it.
func (me *Mesh) EdgeFaces() map[Edge][]int {
	adj := make(map[Edge][]int)
	for fi := range me.Faces {
		for _, e := range me.FaceEdges(fi) {
			adj[e] = append(adj[e], fi)
		}
	}
	return adj
}

// SelectAll selects or deselects every face.
func (me *Mesh) SelectAll(selected bool) {
	for i := range me.Faces {
		me.Faces[i].Selected = selected
	}
}

// SelectedFaces returns the indices of selected faces.
func (me *Mesh) SelectedFaces() []int {
	var out []int
	for i, f := range me.Faces {
		if f.Selected {
			out = append(out, i)
		}
	}
	return out
}

// SelectLinked grows the selection to every face connected to a selected
// face. With delimitSeams the flood fill does not cross seam edges.
func (me *Mesh) SelectLinked(delimitSeams bool) {
	adj := me.EdgeFaces()
	queue := me.SelectedFaces()
	for len(queue) > 0 {
		fi := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		for _, e := range me.FaceEdges(fi) {
			if delimitSeams && me.Seams[e] {
				continue
			}
			for _, other := range adj[e] {
				if !me.Faces[other].Selected {
					me.Faces[other].Selected = true
					queue = append(queue, other)
				}
			}
		}
	}
}

// MarkSeamsFromIslands marks every edge where the UV layout is
// discontinuous, plus boundary edges, as a seam.
func (me *Mesh) MarkSeamsFromIslands() {
	me.Seams = make(map[Edge]bool)
	if !me.HasUVs() {
		return
	}

	type cornerUV struct{ a, b m.Vec2 }
	seen := make(map[Edge]cornerUV)
	count := make(map[Edge]int)
	for _, f := range me.Faces {
		n := len(f.Vertices)
		for i := 0; i < n; i++ {
			va, vb := f.Vertices[i], f.Vertices[(i+1)%n]
			ua, ub := me.UVs[f.UVs[i]], me.UVs[f.UVs[(i+1)%n]]
			if va > vb {
				va, vb = vb, va
				ua, ub = ub, ua
			}
			e := Edge{va, vb}
			count[e]++
			if prev, ok := seen[e]; ok {
				if prev.a != ua || prev.b != ub {
					me.Seams[e] = true
				}
				continue
			}
			seen[e] = cornerUV{ua, ub}
		}
	}
	for e, c := range count {
		if c == 1 {
			me.Seams[e] = true
		}
	}
}
