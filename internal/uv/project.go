package uv

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/texbake/internal/logger"
	"github.com/Faultbox/texbake/internal/scene"
	m "github.com/Faultbox/texbake/pkg/math"
)

// SmartProject unwraps the selected faces. Faces are grouped by normal
// into projection directions no closer than the angle limit, each group
// splits into edge-connected islands, every island is projected flat
// along its direction, and the islands are packed with islandMargin.
// With scaleToBounds the result is stretched to fill the unit square.
func (t *Tool) SmartProject(obj *scene.Object, islandMargin float64, scaleToBounds bool) error {
	me, err := editMesh(obj)
	if err != nil {
		return err
	}
	faces := me.SelectedFaces()
	if len(faces) == 0 {
		logger.Debug("smart project: nothing selected", zap.String("object", obj.Name))
		return nil
	}

	normals := make(map[int]m.Vec3, len(faces))
	for _, fi := range faces {
		normals[fi] = me.FaceNormal(fi)
	}
	dirs := projectionDirs(me, faces, normals, t.angleCos())

	group := make(map[int]int, len(faces))
	for _, fi := range faces {
		group[fi] = nearestDir(dirs, normals[fi])
	}

	islands := projectionIslands(me, faces, group)
	for _, faceSet := range islands {
		projectIsland(me, faceSet, dirs[group[faceSet[0]]])
	}
	compactUVs(me)

	packed := make([]island, len(islands))
	for i, faceSet := range islands {
		packed[i] = island{faces: faceSet, uvs: distinctUVs(me, faceSet)}
	}
	packIslands(me, packed, true, islandMargin, scaleToBounds)
	me.MarkSeamsFromIslands()

	logger.Debug("smart project",
		zap.String("object", obj.Name),
		zap.Int("faces", len(faces)),
		zap.Int("projections", len(dirs)),
		zap.Int("islands", len(islands)))
	return nil
}

func (t *Tool) angleCos() float32 {
	limit := t.AngleLimit
	if limit <= 0 {
		limit = DefaultAngleLimit
	}
	return float32(math.Cos(limit * math.Pi / 180))
}

// projectionDirs picks face normals, largest faces first, that are more
// than the angle limit away from every direction picked so far.
func projectionDirs(me *scene.Mesh, faces []int, normals map[int]m.Vec3, cosLimit float32) []m.Vec3 {
	order := append([]int(nil), faces...)
	sort.SliceStable(order, func(i, j int) bool {
		return me.FaceArea(order[i]) > me.FaceArea(order[j])
	})

	var dirs []m.Vec3
	for _, fi := range order {
		n := normals[fi]
		if n.Length() == 0 {
			continue
		}
		distinct := true
		for _, d := range dirs {
			if n.Dot(d) >= cosLimit {
				distinct = false
				break
			}
		}
		if distinct {
			dirs = append(dirs, n)
		}
	}
	if len(dirs) == 0 {
		dirs = append(dirs, m.Vec3{Z: 1})
	}
	return dirs
}

func nearestDir(dirs []m.Vec3, n m.Vec3) int {
	best, bestDot := 0, float32(math.Inf(-1))
	for i, d := range dirs {
		if dot := n.Dot(d); dot > bestDot {
			best, bestDot = i, dot
		}
	}
	return best
}

// projectionIslands splits faces into edge-connected components whose
// faces share a projection group.
func projectionIslands(me *scene.Mesh, faces []int, group map[int]int) [][]int {
	adj := me.EdgeFaces()
	visited := make(map[int]bool, len(faces))
	var out [][]int
	for _, start := range faces {
		if visited[start] {
			continue
		}
		visited[start] = true
		comp := []int{start}
		for q := 0; q < len(comp); q++ {
			fi := comp[q]
			for _, e := range me.FaceEdges(fi) {
				for _, other := range adj[e] {
					g, selected := group[other]
					if !selected || visited[other] || g != group[fi] {
						continue
					}
					visited[other] = true
					comp = append(comp, other)
				}
			}
		}
		out = append(out, comp)
	}
	return out
}

// projectIsland gives the island fresh UVs, one per position it uses,
// projected onto the plane orthogonal to dir.
func projectIsland(me *scene.Mesh, faces []int, dir m.Vec3) {
	tangent, bitangent := dir.Basis()
	byVertex := make(map[int]int)
	for _, fi := range faces {
		f := &me.Faces[fi]
		uvs := make([]int, len(f.Vertices))
		for ci, vi := range f.Vertices {
			idx, ok := byVertex[vi]
			if !ok {
				p := me.Positions[vi]
				idx = len(me.UVs)
				me.UVs = append(me.UVs, m.Vec2{X: p.Dot(tangent), Y: p.Dot(bitangent)})
				byVertex[vi] = idx
			}
			uvs[ci] = idx
		}
		f.UVs = uvs
	}
}
