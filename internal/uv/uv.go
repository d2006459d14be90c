// Package uv unwraps meshes into UV space, packs UV islands and exports
// UV layouts as images. Unwrap operations act on the selected faces of an
// object in edit mode, like the host tools they stand in for.
package uv

import (
	"errors"
	"fmt"

	"github.com/Faultbox/texbake/internal/bake"
	"github.com/Faultbox/texbake/internal/scene"
	m "github.com/Faultbox/texbake/pkg/math"
)

var (
	ErrNotEditMode = errors.New("object is not in edit mode")
	ErrNoMesh      = errors.New("object has no mesh")
	ErrNoUVs       = errors.New("mesh has no UV layer")
	ErrLayoutSize  = errors.New("invalid layout size")
)

// DefaultAngleLimit is the Smart UV Project angle limit in degrees.
const DefaultAngleLimit = 66

// Tool implements bake.UVTool.
type Tool struct {
	// AngleLimit groups faces whose normals deviate less than this many
	// degrees into the same projection.
	AngleLimit float64
}

var _ bake.UVTool = (*Tool)(nil)

// NewTool returns a tool with host defaults.
func NewTool() *Tool {
	return &Tool{AngleLimit: DefaultAngleLimit}
}

func editMesh(obj *scene.Object) (*scene.Mesh, error) {
	if obj.Mesh == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoMesh, obj.Name)
	}
	if obj.Mode != scene.ModeEdit {
		return nil, fmt.Errorf("%w: %s is in %s mode", ErrNotEditMode, obj.Name, obj.Mode)
	}
	return obj.Mesh, nil
}

// island is a set of faces sharing UV coordinates.
type island struct {
	faces []int
	uvs   []int // distinct UV indices used by faces
}

// uvIslands groups faces connected through shared UV indices.
func uvIslands(me *scene.Mesh, faces []int) []island {
	parent := make(map[int]int)
	var find func(int) int
	find = func(x int) int {
		p, ok := parent[x]
		if !ok {
			parent[x] = x
			return x
		}
		if p == x {
			return x
		}
		root := find(p)
		parent[x] = root
		return root
	}
	for _, fi := range faces {
		uvs := me.Faces[fi].UVs
		root := find(uvs[0])
		for _, u := range uvs[1:] {
			if r := find(u); r != root {
				parent[r] = root
			}
		}
	}

	byRoot := make(map[int]int)
	var out []island
	for _, fi := range faces {
		root := find(me.Faces[fi].UVs[0])
		idx, ok := byRoot[root]
		if !ok {
			idx = len(out)
			byRoot[root] = idx
			out = append(out, island{})
		}
		out[idx].faces = append(out[idx].faces, fi)
	}
	for i := range out {
		out[i].uvs = distinctUVs(me, out[i].faces)
	}
	return out
}

func distinctUVs(me *scene.Mesh, faces []int) []int {
	seen := make(map[int]bool)
	var uvs []int
	for _, fi := range faces {
		for _, u := range me.Faces[fi].UVs {
			if !seen[u] {
				seen[u] = true
				uvs = append(uvs, u)
			}
		}
	}
	return uvs
}

// bounds returns the UV bounding box of a set of UV indices.
func bounds(me *scene.Mesh, uvs []int) (lo, hi m.Vec2) {
	lo, hi = me.UVs[uvs[0]], me.UVs[uvs[0]]
	for _, u := range uvs[1:] {
		lo = lo.Min(me.UVs[u])
		hi = hi.Max(me.UVs[u])
	}
	return lo, hi
}

// compactUVs drops UV entries no face references and renumbers the rest
// in first-use order.
func compactUVs(me *scene.Mesh) {
	remap := make(map[int]int, len(me.UVs))
	uvs := make([]m.Vec2, 0, len(me.UVs))
	for fi := range me.Faces {
		f := &me.Faces[fi]
		for ci, u := range f.UVs {
			n, ok := remap[u]
			if !ok {
				n = len(uvs)
				remap[u] = n
				uvs = append(uvs, me.UVs[u])
			}
			f.UVs[ci] = n
		}
	}
	me.UVs = uvs
}
