package formats

import (
	"errors"
	"testing"
)

const cubeFaceOBJ = `# two quads sharing an edge
mtllib scene.mtl
o Plate
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
v 2 0 0
v 2 1 0
vt 0 0
vt 0.5 0
vt 0.5 1
vt 0 1
vt 1 0
vt 1 1
usemtl Paint
f 1/1 2/2 3/3 4/4
usemtl Rust
f 2/2 5/5 6/6 3/3
`

func TestParseOBJ_Basic(t *testing.T) {
	obj, err := ParseOBJ([]byte(cubeFaceOBJ))
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}

	if len(obj.Positions) != 6 {
		t.Errorf("expected 6 positions, got %d", len(obj.Positions))
	}
	if len(obj.UVs) != 6 {
		t.Errorf("expected 6 uvs, got %d", len(obj.UVs))
	}
	if len(obj.MaterialLibs) != 1 || obj.MaterialLibs[0] != "scene.mtl" {
		t.Errorf("unexpected material libs %v", obj.MaterialLibs)
	}
	if len(obj.Objects) != 1 {
		t.Fatalf("expected 1 object, got %d", len(obj.Objects))
	}

	plate := obj.Object("Plate")
	if plate == nil {
		t.Fatal("object Plate not found")
	}
	if len(plate.Faces) != 2 {
		t.Fatalf("expected 2 faces, got %d", len(plate.Faces))
	}
	if got := plate.Faces[1].Vertices; got[0] != 1 || got[1] != 4 {
		t.Errorf("face indices not zero-based: %v", got)
	}
	if plate.Faces[0].Material != "Paint" || plate.Faces[1].Material != "Rust" {
		t.Errorf("unexpected face materials %q %q", plate.Faces[0].Material, plate.Faces[1].Material)
	}
	if len(plate.Materials) != 2 || plate.Materials[0] != "Paint" {
		t.Errorf("unexpected material order %v", plate.Materials)
	}
}

func TestParseOBJ_CornerForms(t *testing.T) {
	data := `v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vn 0 0 1
f 1 2 3
f 1//1 2//1 3//1
f -3/-1 -2/-1 -1/-1
`
	obj, err := ParseOBJ([]byte(data))
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}
	faces := obj.Objects[0].Faces
	if obj.Objects[0].Name != "default" {
		t.Errorf("expected default object, got %q", obj.Objects[0].Name)
	}
	if faces[0].UVs[0] != NoIndex || faces[0].Normals[0] != NoIndex {
		t.Error("plain corner should have no uv or normal")
	}
	if faces[1].UVs[0] != NoIndex || faces[1].Normals[2] != 0 {
		t.Errorf("v//vn corner parsed wrong: %+v", faces[1])
	}
	if faces[2].Vertices[0] != 0 || faces[2].Vertices[2] != 2 || faces[2].UVs[1] != 0 {
		t.Errorf("negative indices resolved wrong: %+v", faces[2])
	}
}

func TestParseOBJ_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{"empty", "# nothing\n", ErrEmptyOBJ},
		{"two corners", "v 0 0 0\nv 1 0 0\nf 1 2\n", ErrInvalidOBJFace},
		{"bad number", "v 0 zero 0\n", ErrInvalidOBJNumber},
		{"index out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 9\n", ErrOBJIndexRange},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n", ErrOBJIndexRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOBJ([]byte(tt.data))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseMTL(t *testing.T) {
	data := `newmtl Paint
Kd 0.8 0.1 0.1
map_Kd -bm 1.0 -clamp on textures/paint albedo.png
Pr 0.25
map_Pr paint_rough.tga

newmtl Rust
Ns 250
d 0.5

newmtl Plain
`
	mats, err := ParseMTL([]byte(data))
	if err != nil {
		t.Fatalf("ParseMTL: %v", err)
	}
	if len(mats) != 3 {
		t.Fatalf("expected 3 materials, got %d", len(mats))
	}

	paint := mats["Paint"]
	if paint.Diffuse != [3]float32{0.8, 0.1, 0.1} {
		t.Errorf("unexpected Kd %v", paint.Diffuse)
	}
	if paint.DiffuseMap != "textures/paint albedo.png" {
		t.Errorf("unexpected map_Kd %q", paint.DiffuseMap)
	}
	if paint.Roughness != 0.25 || !paint.HasRoughness {
		t.Errorf("unexpected roughness %v", paint.Roughness)
	}
	if paint.RoughnessMap != "paint_rough.tga" {
		t.Errorf("unexpected map_Pr %q", paint.RoughnessMap)
	}

	rust := mats["Rust"]
	if rust.Roughness != 0.5 {
		t.Errorf("Ns 250 should map to roughness 0.5, got %v", rust.Roughness)
	}
	if rust.Dissolve != 0.5 {
		t.Errorf("unexpected dissolve %v", rust.Dissolve)
	}

	if mats["Plain"].Roughness != DefaultRoughness {
		t.Errorf("expected default roughness, got %v", mats["Plain"].Roughness)
	}
}

func TestRoughnessFromShininess(t *testing.T) {
	tests := []struct {
		ns   float32
		want float32
	}{
		{0, 1},
		{1000, 0},
		{5000, 0},
		{-3, 1},
	}
	for _, tt := range tests {
		if got := RoughnessFromShininess(tt.ns); got != tt.want {
			t.Errorf("RoughnessFromShininess(%v) = %v, want %v", tt.ns, got, tt.want)
		}
	}
}
