package baker

import (
	"github.com/Faultbox/texbake/internal/scene"
)

// dilate grows baked texels into uncovered pixels, one ring per pass,
// for margin passes. Each new pixel is the average of its covered
// 8-neighbors from the previous ring.
func dilate(img *scene.Image, texels []texel, margin int) {
	if margin <= 0 {
		return
	}
	w, h := img.Width(), img.Height()
	covered := make([]bool, w*h)
	for i, t := range texels {
		covered[i] = t.tri >= 0
	}

	pix := img.Pix.Pix
	stride := img.Pix.Stride
	next := make([]bool, len(covered))
	for pass := 0; pass < margin; pass++ {
		copy(next, covered)
		grew := false
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if covered[y*w+x] {
					continue
				}
				var sum [4]int
				n := 0
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						nx, ny := x+dx, y+dy
						if nx < 0 || ny < 0 || nx >= w || ny >= h || !covered[ny*w+nx] {
							continue
						}
						o := ny*stride + nx*4
						for c := 0; c < 4; c++ {
							sum[c] += int(pix[o+c])
						}
						n++
					}
				}
				if n == 0 {
					continue
				}
				o := y*stride + x*4
				for c := 0; c < 4; c++ {
					pix[o+c] = uint8((sum[c] + n/2) / n)
				}
				next[y*w+x] = true
				grew = true
			}
		}
		covered, next = next, covered
		if !grew {
			return
		}
	}
}
