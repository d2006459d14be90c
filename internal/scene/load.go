package scene

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	xenc "golang.org/x/text/encoding"

	"github.com/Faultbox/texbake/internal/engine/texture"
	"github.com/Faultbox/texbake/internal/logger"
	"github.com/Faultbox/texbake/pkg/encoding"
	"github.com/Faultbox/texbake/pkg/formats"
	m "github.com/Faultbox/texbake/pkg/math"
)

// ErrNoObjects is returned when a mesh file contains no faces.
var ErrNoObjects = errors.New("no objects with faces")

// TextureLoader decodes a texture map file.
type TextureLoader func(path string) (*image.NRGBA, error)

// LoadOptions control how model files are read. The zero value decodes
// textures with texture.Load and reads non-UTF-8 text as Windows-1252.
type LoadOptions struct {
	Textures TextureLoader
	Charset  string
}

// LoadOBJ builds a scene from a Wavefront OBJ file and its material
// libraries. Missing material libraries or texture maps are logged and
// replaced by defaults; the host behaves the same on import.
func LoadOBJ(path string) (*Scene, error) {
	return LoadOBJWith(path, LoadOptions{})
}

// LoadOBJWith is LoadOBJ with explicit options.
func LoadOBJWith(path string, opts LoadOptions) (*Scene, error) {
	load := opts.Textures
	if load == nil {
		load = texture.Load
	}
	charset := opts.Charset
	if charset == "" {
		charset = encoding.DefaultCharset
	}
	fallback, err := encoding.Lookup(charset)
	if err != nil {
		return nil, err
	}

	data, err := readText(path, fallback)
	if err != nil {
		return nil, err
	}
	obj, err := formats.ParseOBJ(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(obj.Objects) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoObjects)
	}

	sc := New()
	sc.Sources = append(sc.Sources, path)
	dir := filepath.Dir(path)

	mtls := make(map[string]*formats.MTLMaterial)
	for _, lib := range obj.MaterialLibs {
		libPath := filepath.Join(dir, lib)
		libData, err := readText(libPath, fallback)
		if err != nil {
			logger.Warn("material library not found", zap.String("path", libPath), zap.Error(err))
			continue
		}
		parsed, err := formats.ParseMTL(libData)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", libPath, err)
		}
		sc.Sources = append(sc.Sources, libPath)
		for name, mat := range parsed {
			mtls[name] = mat
		}
	}

	// materials are shared between objects using the same name
	materials := make(map[string]*Material)
	for i := range obj.Objects {
		o := buildObject(sc, obj, &obj.Objects[i], dir, mtls, materials, load)
		sc.Add(o)
	}

	logger.Debug("scene loaded",
		zap.String("path", path),
		zap.Int("objects", len(sc.Objects)),
		zap.Int("materials", len(materials)),
	)
	return sc, nil
}

func readText(path string, fallback xenc.Encoding) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text, err := encoding.ToUTF8(data, fallback)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return text, nil
}

func buildObject(sc *Scene, obj *formats.OBJ, src *formats.OBJObject, dir string,
	mtls map[string]*formats.MTLMaterial, materials map[string]*Material, load TextureLoader) *Object {

	o := &Object{Name: src.Name, Mesh: &Mesh{}}

	slots := make(map[string]int)
	for _, name := range src.Materials {
		slots[name] = len(o.Materials)
		if name == "" {
			o.Materials = append(o.Materials, nil)
			continue
		}
		mat, ok := materials[name]
		if !ok {
			mat = loadMaterial(sc, name, mtls[name], dir, load)
			materials[name] = mat
		}
		o.Materials = append(o.Materials, mat)
	}

	// compact global OBJ arrays into per-object arrays
	posMap := make(map[int]int)
	uvMap := make(map[int]int)
	me := o.Mesh
	for _, f := range src.Faces {
		face := Face{
			Vertices: make([]int, len(f.Vertices)),
			Material: slots[f.Material],
		}
		hasUV := true
		for _, ui := range f.UVs {
			if ui == formats.NoIndex {
				hasUV = false
			}
		}
		if hasUV {
			face.UVs = make([]int, len(f.UVs))
		}

		for c, vi := range f.Vertices {
			li, ok := posMap[vi]
			if !ok {
				li = len(me.Positions)
				p := obj.Positions[vi]
				me.Positions = append(me.Positions, m.Vec3{X: p[0], Y: p[1], Z: p[2]})
				posMap[vi] = li
			}
			face.Vertices[c] = li

			if hasUV {
				ui := f.UVs[c]
				lu, ok := uvMap[ui]
				if !ok {
					lu = len(me.UVs)
					uv := obj.UVs[ui]
					me.UVs = append(me.UVs, m.Vec2{X: uv[0], Y: uv[1]})
					uvMap[ui] = lu
				}
				face.UVs[c] = lu
			}
		}
		me.Faces = append(me.Faces, face)
	}
	me.MarkSeamsFromIslands()
	return o
}

func loadMaterial(sc *Scene, name string, src *formats.MTLMaterial, dir string, load TextureLoader) *Material {
	mat := NewMaterial(name)
	if src == nil {
		logger.Warn("material not defined, using defaults", zap.String("material", name))
		return mat
	}

	mat.BaseColor = src.Diffuse
	mat.Roughness = src.Roughness
	mat.BaseColorMap = loadMap(sc, dir, src.DiffuseMap, load)
	mat.RoughnessMap = loadMap(sc, dir, src.RoughnessMap, load)
	return mat
}

func loadMap(sc *Scene, dir, name string, load TextureLoader) *image.NRGBA {
	if name == "" {
		return nil
	}
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, name)
	}
	img, err := load(path)
	if err != nil {
		logger.Warn("texture map not loaded", zap.String("path", path), zap.Error(err))
		return nil
	}
	sc.Sources = append(sc.Sources, path)
	return img
}
