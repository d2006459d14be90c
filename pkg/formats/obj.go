package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// OBJ format errors.
var (
	ErrEmptyOBJ         = errors.New("OBJ data contains no vertices")
	ErrInvalidOBJFace   = errors.New("invalid OBJ face")
	ErrInvalidOBJNumber = errors.New("invalid OBJ number")
	ErrOBJIndexRange    = errors.New("OBJ index out of range")
)

// NoIndex marks an absent texture coordinate or normal reference.
const NoIndex = -1

// OBJFace is a polygon referencing shared vertex arrays.
// All indices are zero-based and already resolved from negative form.
type OBJFace struct {
	Vertices []int  // Indices into OBJ.Positions
	UVs      []int  // Indices into OBJ.UVs (NoIndex when absent)
	Normals  []int  // Indices into OBJ.Normals (NoIndex when absent)
	Material string // Material name from the last usemtl
}

// OBJObject is a named group of faces ("o" or "g" statement).
type OBJObject struct {
	Name      string
	Faces     []OBJFace
	Materials []string // Material names in first-use order
}

// OBJ represents a parsed Wavefront OBJ file.
type OBJ struct {
	MaterialLibs []string     // mtllib file names
	Positions    [][3]float32 // v
	UVs          [][2]float32 // vt
	Normals      [][3]float32 // vn
	Objects      []OBJObject
}

// ParseOBJ parses OBJ data from a byte slice.
// Faces before any "o"/"g" statement land in an object named "default".
func ParseOBJ(data []byte) (*OBJ, error) {
	obj := &OBJ{}
	var current *OBJObject
	material := ""

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			obj.Positions = append(obj.Positions, [3]float32{v[0], v[1], v[2]})
		case "vt":
			v, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			obj.UVs = append(obj.UVs, [2]float32{v[0], v[1]})
		case "vn":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			obj.Normals = append(obj.Normals, [3]float32{v[0], v[1], v[2]})
		case "o", "g":
			name := "default"
			if len(fields) > 1 {
				name = strings.Join(fields[1:], " ")
			}
			obj.Objects = append(obj.Objects, OBJObject{Name: name})
			current = &obj.Objects[len(obj.Objects)-1]
		case "mtllib":
			obj.MaterialLibs = append(obj.MaterialLibs, fields[1:]...)
		case "usemtl":
			if len(fields) > 1 {
				material = strings.Join(fields[1:], " ")
			}
		case "f":
			if current == nil {
				obj.Objects = append(obj.Objects, OBJObject{Name: "default"})
				current = &obj.Objects[len(obj.Objects)-1]
			}
			face, err := obj.parseFace(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			face.Material = material
			current.Faces = append(current.Faces, face)
			current.addMaterial(material)
		default:
			// s, l, p, curves and other statements are not needed for baking
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(obj.Positions) == 0 {
		return nil, ErrEmptyOBJ
	}

	// Drop groups that ended up without faces ("g" used for grouping only).
	objects := obj.Objects[:0]
	for _, o := range obj.Objects {
		if len(o.Faces) > 0 {
			objects = append(objects, o)
		}
	}
	obj.Objects = objects

	return obj, nil
}

// Object returns the object with the given name, or nil.
func (o *OBJ) Object(name string) *OBJObject {
	for i := range o.Objects {
		if o.Objects[i].Name == name {
			return &o.Objects[i]
		}
	}
	return nil
}

func (o *OBJObject) addMaterial(name string) {
	for _, m := range o.Materials {
		if m == name {
			return
		}
	}
	o.Materials = append(o.Materials, name)
}

// parseFace parses "v", "v/vt", "v//vn" and "v/vt/vn" corner references.
func (o *OBJ) parseFace(corners []string) (OBJFace, error) {
	if len(corners) < 3 {
		return OBJFace{}, fmt.Errorf("%w: %d corners", ErrInvalidOBJFace, len(corners))
	}

	face := OBJFace{
		Vertices: make([]int, len(corners)),
		UVs:      make([]int, len(corners)),
		Normals:  make([]int, len(corners)),
	}
	for i, c := range corners {
		parts := strings.Split(c, "/")
		if len(parts) > 3 || parts[0] == "" {
			return OBJFace{}, fmt.Errorf("%w: corner %q", ErrInvalidOBJFace, c)
		}

		v, err := resolveIndex(parts[0], len(o.Positions))
		if err != nil {
			return OBJFace{}, err
		}
		face.Vertices[i] = v

		face.UVs[i] = NoIndex
		if len(parts) > 1 && parts[1] != "" {
			if face.UVs[i], err = resolveIndex(parts[1], len(o.UVs)); err != nil {
				return OBJFace{}, err
			}
		}

		face.Normals[i] = NoIndex
		if len(parts) > 2 && parts[2] != "" {
			if face.Normals[i], err = resolveIndex(parts[2], len(o.Normals)); err != nil {
				return OBJFace{}, err
			}
		}
	}
	return face, nil
}

// resolveIndex converts a one-based or negative relative index.
func resolveIndex(s string, count int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOBJNumber, s)
	}
	idx := n - 1
	if n < 0 {
		idx = count + n
	}
	if n == 0 || idx < 0 || idx >= count {
		return 0, fmt.Errorf("%w: %d (have %d)", ErrOBJIndexRange, n, count)
	}
	return idx, nil
}

// parseFloats parses at least n floats; extra components (w) are ignored.
func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("%w: want %d components, got %d", ErrInvalidOBJNumber, n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidOBJNumber, fields[i])
		}
		out[i] = float32(f)
	}
	return out, nil
}
