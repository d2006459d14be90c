// Package texture loads material texture maps and samples them in UV space.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned for files no decoder is registered for.
var ErrUnsupportedFormat = errors.New("unsupported texture format")

// decodable lists sniffed extensions with a registered image.Decode
// format.
var decodable = map[string]bool{
	"png":  true,
	"jpg":  true,
	"bmp":  true,
	"tif":  true,
	"webp": true,
}

// Load reads an image file into a non-premultiplied RGBA buffer. The
// format is sniffed from the content; TGA has no signature and is
// recognized by its extension.
func Load(path string) (*image.NRGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	kind, _ := filetype.Match(data)
	var img image.Image
	switch {
	case decodable[kind.Extension]:
		img, _, err = image.Decode(bytes.NewReader(data))
	case strings.EqualFold(filepath.Ext(path), ".tga"):
		img, err = DecodeTGA(data)
	case kind == filetype.Unknown:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	default:
		return nil, fmt.Errorf("%w: %s is %s", ErrUnsupportedFormat, path, kind.MIME.Value)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return ToNRGBA(img), nil
}

// ToNRGBA converts any image.Image to *image.NRGBA with origin at (0,0).
// The input is returned unchanged when it already has that form.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Rect, img, b.Min, draw.Src)
	return out
}

// Sample returns the bilinearly filtered color at (u, v) with repeat
// wrapping. v=0 is the bottom row, matching UV conventions. Color
// channels are returned in [0,1] without any color-space conversion.
func Sample(img *image.NRGBA, u, v float32) [4]float32 {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w == 0 || h == 0 {
		return [4]float32{}
	}

	// texel centers sit at half-integers
	x := float64(u)*float64(w) - 0.5
	y := (1-float64(v))*float64(h) - 0.5
	x0, y0 := math.Floor(x), math.Floor(y)
	fx, fy := float32(x-x0), float32(y-y0)

	c00 := fetch(img, int(x0), int(y0))
	c10 := fetch(img, int(x0)+1, int(y0))
	c01 := fetch(img, int(x0), int(y0)+1)
	c11 := fetch(img, int(x0)+1, int(y0)+1)

	var out [4]float32
	for i := range out {
		top := c00[i] + (c10[i]-c00[i])*fx
		bottom := c01[i] + (c11[i]-c01[i])*fx
		out[i] = top + (bottom-top)*fy
	}
	return out
}

func fetch(img *image.NRGBA, x, y int) [4]float32 {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	x = ((x % w) + w) % w
	y = ((y % h) + h) % h
	i := img.PixOffset(x, y)
	p := img.Pix[i : i+4 : i+4]
	return [4]float32{
		float32(p[0]) / 255,
		float32(p[1]) / 255,
		float32(p[2]) / 255,
		float32(p[3]) / 255,
	}
}

// SRGBToLinear converts an sRGB-encoded channel in [0,1] to linear.
func SRGBToLinear(c float32) float32 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return float32(math.Pow((float64(c)+0.055)/1.055, 2.4))
}

// LinearToSRGB converts a linear channel in [0,1] to sRGB encoding.
func LinearToSRGB(c float32) float32 {
	if c <= 0.0031308 {
		return c * 12.92
	}
	return float32(1.055*math.Pow(float64(c), 1/2.4) - 0.055)
}

// Quantize maps a [0,1] value to a byte with rounding and clamping.
func Quantize(c float32) uint8 {
	if c <= 0 {
		return 0
	}
	if c >= 1 {
		return 255
	}
	return uint8(c*255 + 0.5)
}

// NRGBA builds a color from [0,1] channels.
func NRGBA(r, g, b, a float32) color.NRGBA {
	return color.NRGBA{R: Quantize(r), G: Quantize(g), B: Quantize(b), A: Quantize(a)}
}
