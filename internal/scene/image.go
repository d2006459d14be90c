package scene

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"sync"
)

// Image errors.
var (
	ErrNoFilePath      = errors.New("image has no file path")
	ErrPixelSize       = errors.New("pixel data size mismatch")
	ErrUnsupportedType = errors.New("unsupported file format")
)

// FormatPNG is the only file format images are saved in.
const FormatPNG = "PNG"

// Image is a named RGBA pixel buffer in the registry. Pixels are stored
// non-premultiplied, top row first.
type Image struct {
	Name       string
	Alpha      bool
	Pix        *image.NRGBA
	FilePath   string
	FileFormat string
}

// NewImage allocates a transparent black image.
func NewImage(name string, width, height int, alpha bool) *Image {
	return &Image{
		Name:       name,
		Alpha:      alpha,
		Pix:        image.NewNRGBA(image.Rect(0, 0, width, height)),
		FileFormat: FormatPNG,
	}
}

// Width returns the image width in pixels.
func (img *Image) Width() int { return img.Pix.Rect.Dx() }

// Height returns the image height in pixels.
func (img *Image) Height() int { return img.Pix.Rect.Dy() }

// Fill sets every pixel to c.
func (img *Image) Fill(c color.NRGBA) {
	p := img.Pix.Pix
	for i := 0; i < len(p); i += 4 {
		p[i], p[i+1], p[i+2], p[i+3] = c.R, c.G, c.B, c.A
	}
}

// SetPixels replaces the pixel contents with width*height*4 RGBA bytes.
func (img *Image) SetPixels(pix []byte) error {
	if len(pix) != len(img.Pix.Pix) {
		return fmt.Errorf("%w: expected %d, got %d", ErrPixelSize, len(img.Pix.Pix), len(pix))
	}
	copy(img.Pix.Pix, pix)
	return nil
}

// Resize reallocates the buffer when the dimensions differ. Contents are
// discarded.
func (img *Image) Resize(width, height int) {
	if img.Width() == width && img.Height() == height {
		return
	}
	img.Pix = image.NewNRGBA(image.Rect(0, 0, width, height))
}

// Save writes the image to FilePath. Images without alpha are written
// as opaque RGB.
func (img *Image) Save() error {
	if img.FilePath == "" {
		return fmt.Errorf("%w: %s", ErrNoFilePath, img.Name)
	}
	if img.FileFormat != FormatPNG {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, img.FileFormat)
	}

	out := image.Image(img.Pix)
	if !img.Alpha {
		out = opaque(img.Pix)
	}

	file, err := os.Create(img.FilePath)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if err := png.Encode(file, out); err != nil {
		file.Close()
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return file.Close()
}

func opaque(src *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 255
	}
	return dst
}

// Registry is the global, name-keyed image store.
type Registry struct {
	mu     sync.RWMutex
	images map[string]*Image
	order  []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{images: make(map[string]*Image)}
}

// Lookup returns the image with the given name, or nil.
func (r *Registry) Lookup(name string) *Image {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.images[name]
}

// FindOrCreate returns the named image, creating it when absent. An
// existing image is resized to the requested dimensions so repeated runs
// reuse the same entry. created reports whether a new entry was added.
func (r *Registry) FindOrCreate(name string, width, height int, alpha bool) (img *Image, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if img, ok := r.images[name]; ok {
		img.Resize(width, height)
		return img, false
	}
	img = NewImage(name, width, height, alpha)
	r.images[name] = img
	r.order = append(r.order, name)
	return img, true
}

// Len returns the number of images.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.images)
}

// Names returns image names in creation order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}
