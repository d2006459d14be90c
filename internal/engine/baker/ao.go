package baker

import (
	"image/color"
	"math"

	"github.com/Faultbox/texbake/internal/engine/picking"
	"github.com/Faultbox/texbake/internal/engine/texture"
	"github.com/Faultbox/texbake/internal/scene"
	m "github.com/Faultbox/texbake/pkg/math"
)

// rayOffset lifts AO ray origins off the surface to avoid self hits.
const rayOffset = 1e-4

// newAOShader builds a BVH over the mesh and returns a shader that casts
// samples cosine-weighted rays per texel. The result is the unoccluded
// fraction, stored as non-color data.
func newAOShader(me *scene.Mesh, samples int, distance float32) shadeFunc {
	samples = max(samples, 1)
	if distance <= 0 {
		distance = math.MaxFloat32
	}

	tris := me.Triangles()
	prims := make([]picking.Triangle, len(tris))
	normals := make([]m.Vec3, len(me.Faces))
	for i, t := range tris {
		prims[i] = picking.Triangle{
			A: me.Positions[t.V[0]],
			B: me.Positions[t.V[1]],
			C: me.Positions[t.V[2]],
		}
	}
	for fi := range me.Faces {
		normals[fi] = me.FaceNormal(fi)
	}
	bvh := picking.NewBVH(prims)

	return func(c *rowContext) color.NRGBA {
		p := interpolate(me, c.tri, c.bary)
		n := normals[c.tri.Face]
		tangent, bitangent := n.Basis()
		origin := p.Add(n.Scale(rayOffset))

		hits := 0
		for i := 0; i < samples; i++ {
			dir := cosineHemisphere(c.rng.Float32(), c.rng.Float32(), n, tangent, bitangent)
			if bvh.Occluded(picking.Ray{Origin: origin, Direction: dir}, distance) {
				hits++
			}
		}
		q := texture.Quantize(1 - float32(hits)/float32(samples))
		return color.NRGBA{R: q, G: q, B: q, A: 255}
	}
}

func interpolate(me *scene.Mesh, tri scene.Triangle, b [3]float32) m.Vec3 {
	return me.Positions[tri.V[0]].Scale(b[0]).
		Add(me.Positions[tri.V[1]].Scale(b[1])).
		Add(me.Positions[tri.V[2]].Scale(b[2]))
}

// cosineHemisphere maps two uniform numbers to a direction around n with
// a cosine-weighted distribution.
func cosineHemisphere(u1, u2 float32, n, tangent, bitangent m.Vec3) m.Vec3 {
	r := float32(math.Sqrt(float64(u1)))
	phi := 2 * math.Pi * float64(u2)
	x := r * float32(math.Cos(phi))
	y := r * float32(math.Sin(phi))
	z := float32(math.Sqrt(float64(max(0, 1-u1))))
	return tangent.Scale(x).Add(bitangent.Scale(y)).Add(n.Scale(z))
}
