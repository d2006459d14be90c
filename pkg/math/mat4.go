package math

// Mat4 is a column-major 4x4 matrix as OpenGL expects it: element
// (row, col) is stored at index col*4+row.
type Mat4 [16]float32

func (m Mat4) at(row, col int) float32 { return m[col*4+row] }

// Identity returns the identity matrix.
func Identity() Mat4 {
	var m Mat4
	for i := 0; i < 4; i++ {
		m[i*5] = 1
	}
	return m
}

// Scale returns a matrix scaling each axis.
func Scale(x, y, z float32) Mat4 {
	m := Identity()
	m[0], m[5], m[10] = x, y, z
	return m
}

// Translate returns a matrix moving points by (x, y, z).
func Translate(x, y, z float32) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = x, y, z
	return m
}

// UVToPixel maps UV coordinates onto a width x height image whose first
// row is the top: u=0 is the left edge and v=0 the bottom edge.
func UVToPixel(width, height int) Mat4 {
	w, h := float32(width), float32(height)
	return Translate(0, h, 0).Mul(Scale(w, -h, 1))
}

// Mul returns m * n, so n is applied first.
func (m Mat4) Mul(n Mat4) Mat4 {
	var out Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m.at(row, k) * n.at(k, col)
			}
			out[col*4+row] = sum
		}
	}
	return out
}

// Transform applies m to point p (w=1) and divides by the resulting w.
func (m Mat4) Transform(p Vec3) Vec3 {
	var r [4]float32
	for row := range r {
		r[row] = m.at(row, 0)*p.X + m.at(row, 1)*p.Y + m.at(row, 2)*p.Z + m.at(row, 3)
	}
	if r[3] != 0 && r[3] != 1 {
		return Vec3{X: r[0] / r[3], Y: r[1] / r[3], Z: r[2] / r[3]}
	}
	return Vec3{X: r[0], Y: r[1], Z: r[2]}
}

// Transform2 applies m to the 2D point p (z=0).
func (m Mat4) Transform2(p Vec2) Vec2 {
	q := m.Transform(Vec3{X: p.X, Y: p.Y})
	return Vec2{X: q.X, Y: q.Y}
}

// Ptr returns a pointer to the first element for uniform uploads.
func (m *Mat4) Ptr() *float32 {
	return &m[0]
}
