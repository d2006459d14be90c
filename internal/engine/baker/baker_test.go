package baker

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/texbake/internal/bake"
	"github.com/Faultbox/texbake/internal/scene"
	m "github.com/Faultbox/texbake/pkg/math"
)

func bindTarget(obj *scene.Object, w, h int) *scene.Image {
	img := scene.NewImage(obj.Name+"_target", w, h, true)
	for _, mat := range obj.Materials {
		node := mat.NewImageNode()
		node.Image = img
		mat.SetActive(node)
	}
	return img
}

func newScene(obj *scene.Object, margin int) *scene.Scene {
	sc := scene.New()
	sc.Add(obj)
	sc.Bake.Margin = margin
	return sc
}

func pixel(img *scene.Image, x, y int) color.NRGBA {
	return img.Pix.NRGBAAt(x, y)
}

func TestBakeDiffusePlane(t *testing.T) {
	mat := scene.NewMaterial("Red")
	mat.BaseColor = [3]float32{1, 0, 0}
	obj := scene.NewPlane("Plane", mat)
	img := bindTarget(obj, 8, 8)

	err := (&Engine{}).Bake(newScene(obj, 0), obj, bake.Options{Type: bake.TypeDiffuse, UseClear: true})
	require.NoError(t, err)

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			require.Equal(t, color.NRGBA{255, 0, 0, 255}, pixel(img, x, y), "pixel %d,%d", x, y)
		}
	}
}

func TestBakeDiffuseTextured(t *testing.T) {
	tex := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	tex.SetNRGBA(0, 0, color.NRGBA{255, 255, 255, 255})
	tex.SetNRGBA(1, 0, color.NRGBA{0, 0, 255, 255})

	mat := scene.NewMaterial("Tex")
	mat.BaseColor = [3]float32{1, 1, 1}
	mat.BaseColorMap = tex
	obj := scene.NewPlane("Plane", mat)
	img := bindTarget(obj, 2, 1)

	// target texel centers line up with the map's texel centers
	require.NoError(t, (&Engine{}).Bake(newScene(obj, 0), obj, bake.Options{Type: bake.TypeDiffuse}))
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, pixel(img, 0, 0))
	assert.Equal(t, color.NRGBA{0, 0, 255, 255}, pixel(img, 1, 0))
}

func TestBakeRoughness(t *testing.T) {
	tests := []struct {
		name      string
		roughness float32
		mapValue  uint8
		useMap    bool
		want      uint8
	}{
		{"constant", 0.25, 0, false, 64},
		{"map", 1, 128, true, 128},
		{"map scaled", 0.5, 255, true, 128},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mat := scene.NewMaterial("M")
			mat.Roughness = tt.roughness
			if tt.useMap {
				rm := image.NewNRGBA(image.Rect(0, 0, 1, 1))
				rm.SetNRGBA(0, 0, color.NRGBA{tt.mapValue, 0, 0, 255})
				mat.RoughnessMap = rm
			}
			obj := scene.NewPlane("Plane", mat)
			img := bindTarget(obj, 4, 4)

			require.NoError(t, (&Engine{}).Bake(newScene(obj, 0), obj, bake.Options{Type: bake.TypeRoughness, UseClear: true}))
			got := pixel(img, 2, 1)
			assert.Equal(t, color.NRGBA{tt.want, tt.want, tt.want, 255}, got)
		})
	}
}

// facingQuads returns two 20x20 quads 0.1 apart facing each other. The
// lower one owns the bottom half of UV space, the upper one the top half.
func facingQuads() *scene.Object {
	me := &scene.Mesh{
		Positions: []m.Vec3{
			{X: -10, Y: -10}, {X: 10, Y: -10}, {X: 10, Y: 10}, {X: -10, Y: 10},
			{X: -10, Y: -10, Z: 0.1}, {X: 10, Y: -10, Z: 0.1}, {X: 10, Y: 10, Z: 0.1}, {X: -10, Y: 10, Z: 0.1},
		},
		UVs: []m.Vec2{
			{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 0.5}, {X: 0, Y: 0.5},
			{X: 0, Y: 0.5}, {X: 1, Y: 0.5}, {X: 1, Y: 1}, {X: 0, Y: 1},
		},
		Faces: []scene.Face{
			{Vertices: []int{0, 1, 2, 3}, UVs: []int{0, 1, 2, 3}},
			{Vertices: []int{7, 6, 5, 4}, UVs: []int{7, 6, 5, 4}},
		},
	}
	return &scene.Object{Name: "Gap", Mesh: me, Materials: []*scene.Material{scene.NewMaterial("M")}}
}

func TestBakeAOOccluded(t *testing.T) {
	obj := facingQuads()
	img := bindTarget(obj, 16, 16)
	sc := newScene(obj, 0)
	sc.Render.Samples = 16
	sc.World.AODistance = 10

	require.NoError(t, (&Engine{Seed: 1}).Bake(sc, obj, bake.Options{Type: bake.TypeAO, UseClear: true}))
	// center of the lower quad and of the upper quad
	assert.Less(t, pixel(img, 8, 12).R, uint8(30))
	assert.Less(t, pixel(img, 8, 4).R, uint8(30))

	sc.World.AODistance = 0.05
	require.NoError(t, (&Engine{Seed: 1}).Bake(sc, obj, bake.Options{Type: bake.TypeAO, UseClear: true}))
	assert.Equal(t, uint8(255), pixel(img, 8, 12).R, "occluder beyond AO distance")
}

func TestBakeAOConvex(t *testing.T) {
	obj := scene.NewCube("Cube", scene.NewMaterial("M"))
	img := bindTarget(obj, 32, 32)
	sc := newScene(obj, 0)
	sc.Render.Samples = 8

	require.NoError(t, (&Engine{}).Bake(sc, obj, bake.Options{Type: bake.TypeAO, UseClear: true}))
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, pixel(img, 5, 24))
	assert.Equal(t, color.NRGBA{0, 0, 0, 255}, pixel(img, 10, 24), "gap between islands is cleared")
}

func TestBakeAODeterministic(t *testing.T) {
	bakeWith := func(workers int) []byte {
		obj := facingQuads()
		img := bindTarget(obj, 16, 16)
		sc := newScene(obj, 0)
		sc.Render.Samples = 4
		require.NoError(t, (&Engine{Workers: workers, Seed: 7}).Bake(sc, obj, bake.Options{Type: bake.TypeAO}))
		return img.Pix.Pix
	}
	assert.Equal(t, bakeWith(1), bakeWith(5))
}

func TestBakeMargin(t *testing.T) {
	for _, tt := range []struct {
		margin int
		want   uint8
	}{
		{0, 0},
		{2, 231},
	} {
		obj := scene.NewCube("Cube", scene.NewMaterial("M"))
		img := bindTarget(obj, 32, 32)
		require.NoError(t, (&Engine{}).Bake(newScene(obj, tt.margin), obj, bake.Options{Type: bake.TypeDiffuse, UseClear: true}))
		assert.Equal(t, uint8(231), pixel(img, 5, 24).R)
		assert.Equal(t, tt.want, pixel(img, 10, 24).R, "margin %d", tt.margin)
	}
}

func TestBakeErrors(t *testing.T) {
	opts := bake.Options{Type: bake.TypeDiffuse}

	noTarget := scene.NewPlane("Plane", scene.NewMaterial("M"))
	assert.ErrorIs(t, (&Engine{}).Bake(newScene(noTarget, 0), noTarget, opts), ErrNoBakeTarget)

	emptySlot := scene.NewPlane("Plane", nil)
	assert.ErrorIs(t, (&Engine{}).Bake(newScene(emptySlot, 0), emptySlot, opts), ErrNoBakeTarget)

	noUV := scene.NewPlane("Plane", scene.NewMaterial("M"))
	bindTarget(noUV, 4, 4)
	noUV.Mesh.UVs = nil
	assert.ErrorIs(t, (&Engine{}).Bake(newScene(noUV, 0), noUV, opts), ErrNoUVs)

	plane := scene.NewPlane("Plane", scene.NewMaterial("M"))
	bindTarget(plane, 4, 4)
	err := (&Engine{}).Bake(newScene(plane, 0), plane, bake.Options{Type: bake.TypeDiffuse, UseSelectedToActive: true})
	assert.ErrorIs(t, err, ErrSelectedToActive)
	assert.ErrorIs(t, (&Engine{}).Bake(newScene(plane, 0), plane, bake.Options{Type: "EMIT"}), ErrUnknownPass)
}

func TestBakeSharedImage(t *testing.T) {
	red := scene.NewMaterial("Red")
	red.BaseColor = [3]float32{1, 0, 0}
	blue := scene.NewMaterial("Blue")
	blue.BaseColor = [3]float32{0, 0, 1}
	obj := facingQuads()
	obj.Materials = []*scene.Material{red, blue}
	obj.Mesh.Faces[1].Material = 1
	img := bindTarget(obj, 8, 8)

	require.NoError(t, (&Engine{}).Bake(newScene(obj, 0), obj, bake.Options{Type: bake.TypeDiffuse, UseClear: true}))
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, pixel(img, 4, 6))
	assert.Equal(t, color.NRGBA{0, 0, 255, 255}, pixel(img, 4, 1))
}
