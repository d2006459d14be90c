package bake

import (
	"fmt"

	"github.com/Faultbox/texbake/internal/scene"
)

// CheckPackInputs verifies both images hold buffers of identical size.
func CheckPackInputs(diffuse, rough *scene.Image) error {
	if diffuse == nil || rough == nil {
		return fmt.Errorf("%w: missing image", ErrSizeMismatch)
	}
	if diffuse.Width() != rough.Width() || diffuse.Height() != rough.Height() {
		return fmt.Errorf("%w: diffuse %dx%d, roughness %dx%d", ErrSizeMismatch,
			diffuse.Width(), diffuse.Height(), rough.Width(), rough.Height())
	}
	return nil
}

// PackPixels returns RGBA bytes with rgb from color and alpha = 255 - rough.r.
// Both inputs are width*height*4 RGBA bytes in the same row order.
func PackPixels(color, rough []byte) []byte {
	out := make([]byte, len(color))
	for i := 0; i+3 < len(color); i += 4 {
		out[i] = color[i]
		out[i+1] = color[i+1]
		out[i+2] = color[i+2]
		out[i+3] = 255 - rough[i]
	}
	return out
}

// CPUCompositor packs channels on the CPU. Its output is the reference the
// GPU compositor must match byte for byte.
type CPUCompositor struct{}

// Pack implements Compositor.
func (CPUCompositor) Pack(diffuse, rough *scene.Image) error {
	if err := CheckPackInputs(diffuse, rough); err != nil {
		return err
	}
	return diffuse.SetPixels(PackPixels(diffuse.Pix.Pix, rough.Pix.Pix))
}
