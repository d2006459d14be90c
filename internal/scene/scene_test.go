package scene

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/Faultbox/texbake/pkg/math"
)

func TestSceneActive(t *testing.T) {
	sc := New()
	assert.Nil(t, sc.Active)

	a := NewPlane("A", NewMaterial("Mat"))
	b := NewPlane("B", NewMaterial("Mat"))
	sc.Add(a)
	sc.Add(b)
	assert.Same(t, a, sc.Active, "first object becomes active")

	require.NoError(t, sc.SetActive("B"))
	assert.Same(t, b, sc.Active)

	err := sc.SetActive("C")
	assert.ErrorIs(t, err, ErrObjectNotFound)
	assert.Same(t, b, sc.Active)
}

func TestRegistryFindOrCreate(t *testing.T) {
	r := NewRegistry()

	img, created := r.FindOrCreate("Crate_bake_diffuse", 8, 4, true)
	require.True(t, created)
	assert.Equal(t, 8, img.Width())
	assert.Equal(t, 4, img.Height())
	assert.True(t, img.Alpha)

	again, created := r.FindOrCreate("Crate_bake_diffuse", 8, 4, true)
	assert.False(t, created)
	assert.Same(t, img, again)
	assert.Equal(t, 1, r.Len())

	resized, _ := r.FindOrCreate("Crate_bake_diffuse", 16, 16, true)
	assert.Same(t, img, resized)
	assert.Equal(t, 16, resized.Width())

	r.FindOrCreate("Crate_bake_rough", 8, 8, false)
	assert.Equal(t, []string{"Crate_bake_diffuse", "Crate_bake_rough"}, r.Names())
	assert.Nil(t, r.Lookup("missing"))
}

func TestImageSave(t *testing.T) {
	dir := t.TempDir()

	img := NewImage("rough", 2, 2, false)
	img.Fill(color.NRGBA{R: 100, G: 100, B: 100, A: 0})

	assert.ErrorIs(t, img.Save(), ErrNoFilePath)

	img.FilePath = filepath.Join(dir, "rough.png")
	require.NoError(t, img.Save())

	f, err := os.Open(img.FilePath)
	require.NoError(t, err)
	defer f.Close()
	decoded, err := png.Decode(f)
	require.NoError(t, err)

	_, _, _, a := decoded.At(1, 1).RGBA()
	assert.Equal(t, uint32(0xffff), a, "images without alpha are saved opaque")
	// in-memory alpha stays untouched
	assert.Equal(t, uint8(0), img.Pix.Pix[3])
}

func TestImageSetPixels(t *testing.T) {
	img := NewImage("x", 2, 1, true)
	assert.ErrorIs(t, img.SetPixels(make([]byte, 4)), ErrPixelSize)

	require.NoError(t, img.SetPixels([]byte{1, 2, 3, 4, 5, 6, 7, 8}))
	assert.Equal(t, color.NRGBA{5, 6, 7, 8}, img.Pix.NRGBAAt(1, 0))
}

func TestMaterialNodes(t *testing.T) {
	mat := NewMaterial("Mat")
	assert.Nil(t, mat.ActiveImage())

	node := mat.NewImageNode()
	node.Image = NewImage("img", 1, 1, false)
	mat.SetActive(node)
	assert.Same(t, node.Image, mat.ActiveImage())
	assert.Len(t, mat.Nodes, 1)

	var nilMat *Material
	assert.Nil(t, nilMat.ActiveImage())
}

func TestMeshTriangles(t *testing.T) {
	plane := NewPlane("P", nil)
	tris := plane.Mesh.Triangles()
	require.Len(t, tris, 2)
	assert.Equal(t, [3]int{0, 1, 2}, tris[0].V)
	assert.Equal(t, [3]int{0, 2, 3}, tris[1].V)
	assert.Equal(t, [3]int{0, 2, 3}, tris[1].UV)
}

func TestMeshNormalAndArea(t *testing.T) {
	plane := NewPlane("P", nil)
	assert.Equal(t, m.Vec3{Z: 1}, plane.Mesh.FaceNormal(0))
	assert.InDelta(t, 4.0, plane.Mesh.FaceArea(0), 1e-6)

	cube := NewCube("C", nil)
	for fi := range cube.Mesh.Faces {
		n := cube.Mesh.FaceNormal(fi)
		c := cube.Mesh.Positions[cube.Mesh.Faces[fi].Vertices[0]]
		assert.Greater(t, n.Dot(c), float32(0), "face %d normal must point outward", fi)
	}
}

func TestMarkSeamsFromIslands(t *testing.T) {
	plane := NewPlane("P", nil)
	assert.Len(t, plane.Mesh.Seams, 4, "all boundary edges are seams")

	cube := NewCube("C", nil)
	// every cube edge separates two different UV cells
	assert.Len(t, cube.Mesh.Seams, 12)
}

func TestSelectLinked(t *testing.T) {
	cube := NewCube("C", nil)
	me := cube.Mesh

	me.SelectAll(false)
	me.Faces[0].Selected = true
	me.SelectLinked(true)
	assert.Equal(t, []int{0}, me.SelectedFaces(), "seams stop the flood fill")

	me.SelectLinked(false)
	assert.Len(t, me.SelectedFaces(), 6)
}

func TestLoadOBJ(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("crate.obj", `mtllib crate.mtl
o Crate
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
usemtl Wood
f 1/1 2/2 3/3 4/4
o Lid
v 0 0 1
v 1 0 1
v 1 1 1
usemtl Wood
f 5 6 7
`)
	write("crate.mtl", `newmtl Wood
Kd 0.5 0.25 0.1
Pr 0.7
map_Kd missing.png
`)

	sc, err := LoadOBJ(filepath.Join(dir, "crate.obj"))
	require.NoError(t, err)
	require.Len(t, sc.Objects, 2)
	assert.Equal(t, "Crate", sc.Active.Name)
	assert.Len(t, sc.Sources, 2, "missing texture is not a source")

	crate := sc.Object("Crate")
	assert.Len(t, crate.Mesh.Positions, 4)
	assert.True(t, crate.Mesh.HasUVs())
	require.Len(t, crate.Materials, 1)
	assert.Equal(t, [3]float32{0.5, 0.25, 0.1}, crate.Materials[0].BaseColor)
	assert.InDelta(t, 0.7, crate.Materials[0].Roughness, 1e-6)
	assert.Nil(t, crate.Materials[0].BaseColorMap)

	lid := sc.Object("Lid")
	assert.Len(t, lid.Mesh.Positions, 3, "positions are compacted per object")
	assert.False(t, lid.Mesh.HasUVs())
	assert.Same(t, crate.Materials[0], lid.Materials[0], "materials are shared by name")
}

func TestLoadOBJMissing(t *testing.T) {
	_, err := LoadOBJ("/nonexistent/model.obj")
	assert.Error(t, err)
}

func TestLoadOBJWith(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tri.obj"), []byte(`mtllib tri.mtl
o Tri
v 0 0 0
v 1 0 0
v 0 1 0
usemtl Paint
f 1 2 3
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tri.mtl"), []byte(`newmtl Paint
map_Kd paint.png
map_Pr rough.png
`), 0o644))

	var requested []string
	load := func(path string) (*image.NRGBA, error) {
		requested = append(requested, path)
		return image.NewNRGBA(image.Rect(0, 0, 1, 1)), nil
	}
	sc, err := LoadOBJWith(filepath.Join(dir, "tri.obj"), LoadOptions{Textures: load})
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "paint.png"), filepath.Join(dir, "rough.png")}, requested)
	mat := sc.Active.Materials[0]
	assert.NotNil(t, mat.BaseColorMap)
	assert.NotNil(t, mat.RoughnessMap)
	assert.Len(t, sc.Sources, 4)
}

func TestLoadOBJLegacyCharset(t *testing.T) {
	dir := t.TempDir()
	// "Métal" in Windows-1252
	require.NoError(t, os.WriteFile(filepath.Join(dir, "m.obj"), []byte("o M\xE9tal\nv 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"), 0o644))

	sc, err := LoadOBJ(filepath.Join(dir, "m.obj"))
	require.NoError(t, err)
	assert.Equal(t, "Métal", sc.Active.Name)

	_, err = LoadOBJWith(filepath.Join(dir, "m.obj"), LoadOptions{Charset: "klingon"})
	assert.Error(t, err)
}
