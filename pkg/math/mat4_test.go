package math

import "testing"

func TestIdentity(t *testing.T) {
	m := Identity()
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			want := float32(0)
			if row == col {
				want = 1
			}
			if got := m.at(row, col); got != want {
				t.Errorf("Identity()[%d,%d] = %v, want %v", row, col, got, want)
			}
		}
	}
}

func TestMulOrder(t *testing.T) {
	// scale first, then translate
	m := Translate(10, 20, 30).Mul(Scale(2, 2, 2))
	got := m.Transform(Vec3{X: 1, Y: 2, Z: 3})
	want := Vec3{X: 12, Y: 24, Z: 36}
	if got != want {
		t.Errorf("Transform() = %v, want %v", got, want)
	}

	if id := m.Mul(Identity()); id != m {
		t.Error("M * I != M")
	}
}

func TestUVToPixel(t *testing.T) {
	xf := UVToPixel(100, 50)
	tests := []struct {
		uv, want Vec2
	}{
		{Vec2{X: 0, Y: 0}, Vec2{X: 0, Y: 50}},   // bottom-left
		{Vec2{X: 1, Y: 1}, Vec2{X: 100, Y: 0}},  // top-right
		{Vec2{X: 0.5, Y: 0.25}, Vec2{X: 50, Y: 37.5}},
	}
	for _, tt := range tests {
		if got := xf.Transform2(tt.uv); got != tt.want {
			t.Errorf("UVToPixel.Transform2(%v) = %v, want %v", tt.uv, got, tt.want)
		}
	}
}
