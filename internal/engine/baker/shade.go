package baker

import (
	"image/color"
	"math/rand/v2"

	"github.com/Faultbox/texbake/internal/engine/texture"
	"github.com/Faultbox/texbake/internal/scene"
)

// rowContext carries the per-texel inputs of a shader. Each row gets its
// own random source, so results do not depend on worker scheduling.
type rowContext struct {
	obj  *scene.Object
	rng  *rand.Rand
	tri  scene.Triangle
	bary [3]float32
	u, v float32
}

func (c *rowContext) material() *scene.Material {
	return c.obj.Materials[c.tri.Material]
}

type shadeFunc func(c *rowContext) color.NRGBA

// diffuseShader returns the albedo as sRGB. With the color pass disabled
// the surface is treated as white.
func diffuseShader(usePassColor bool) shadeFunc {
	return func(c *rowContext) color.NRGBA {
		if !usePassColor {
			return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
		}
		mat := c.material()
		rgb := mat.BaseColor
		if mat.BaseColorMap != nil {
			s := texture.Sample(mat.BaseColorMap, c.u, c.v)
			for i := range rgb {
				rgb[i] *= texture.SRGBToLinear(s[i])
			}
		}
		return texture.NRGBA(
			texture.LinearToSRGB(rgb[0]),
			texture.LinearToSRGB(rgb[1]),
			texture.LinearToSRGB(rgb[2]),
			1,
		)
	}
}

// roughnessShader writes roughness as non-color data in all three
// channels.
func roughnessShader(c *rowContext) color.NRGBA {
	mat := c.material()
	r := mat.Roughness
	if mat.RoughnessMap != nil {
		r *= texture.Sample(mat.RoughnessMap, c.u, c.v)[0]
	}
	q := texture.Quantize(r)
	return color.NRGBA{R: q, G: q, B: q, A: 255}
}
