package scene

import (
	m "github.com/Faultbox/texbake/pkg/math"
)

// NewPlane returns a unit quad in the XY plane facing +Z with a single
// material slot and UVs covering the full [0,1] square.
func NewPlane(name string, mat *Material) *Object {
	me := &Mesh{
		Positions: []m.Vec3{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}},
		UVs:       []m.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
		Faces: []Face{
			{Vertices: []int{0, 1, 2, 3}, UVs: []int{0, 1, 2, 3}},
		},
	}
	me.MarkSeamsFromIslands()
	return &Object{Name: name, Mesh: me, Materials: []*Material{mat}}
}

// NewCube returns a cube of half-size 1 centered at the origin. Each face
// gets its own cell of a 3x2 UV grid, so every face is a separate island.
func NewCube(name string, mat *Material) *Object {
	me := &Mesh{
		Positions: []m.Vec3{
			{X: -1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: -1}, {X: -1, Y: 1, Z: -1},
			{X: -1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: 1},
		},
	}

	quads := [6][4]int{
		{4, 5, 6, 7}, // +Z
		{1, 0, 3, 2}, // -Z
		{5, 1, 2, 6}, // +X
		{0, 4, 7, 3}, // -X
		{7, 6, 2, 3}, // +Y
		{0, 1, 5, 4}, // -Y
	}
	const cellW, cellH = float32(1) / 3, float32(1) / 2
	const inset = 0.02
	for i, q := range quads {
		u0 := float32(i%3)*cellW + inset
		v0 := float32(i/3)*cellH + inset
		u1 := u0 + cellW - 2*inset
		v1 := v0 + cellH - 2*inset
		base := len(me.UVs)
		me.UVs = append(me.UVs,
			m.Vec2{X: u0, Y: v0}, m.Vec2{X: u1, Y: v0},
			m.Vec2{X: u1, Y: v1}, m.Vec2{X: u0, Y: v1})
		me.Faces = append(me.Faces, Face{
			Vertices: []int{q[0], q[1], q[2], q[3]},
			UVs:      []int{base, base + 1, base + 2, base + 3},
		})
	}
	me.MarkSeamsFromIslands()
	return &Object{Name: name, Mesh: me, Materials: []*Material{mat}}
}
