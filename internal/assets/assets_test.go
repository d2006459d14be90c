package assets

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestManagerCachesTextures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "albedo.png")
	writePNG(t, path, color.NRGBA{R: 10, A: 255})

	m := NewManager()
	first, err := m.Texture(path)
	if err != nil {
		t.Fatalf("Texture() error = %v", err)
	}
	second, err := m.Texture(path)
	if err != nil {
		t.Fatalf("Texture() error = %v", err)
	}
	if first != second {
		t.Error("second load did not come from cache")
	}
	if hits, misses := m.Stats(); hits != 1 || misses != 1 {
		t.Errorf("Stats() = %d hits, %d misses; want 1, 1", hits, misses)
	}
}

func TestManagerInvalidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "albedo.png")
	writePNG(t, path, color.NRGBA{R: 10, A: 255})

	m := NewManager()
	if _, err := m.Texture(path); err != nil {
		t.Fatal(err)
	}

	writePNG(t, path, color.NRGBA{R: 200, A: 255})
	m.Invalidate(path, "/not/cached.png")

	img, err := m.Texture(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := img.Pix[0]; got != 200 {
		t.Errorf("red after invalidate = %d, want 200", got)
	}
}

func TestManagerInvalidateAbsoluteKey(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "textures"), 0o755); err != nil {
		t.Fatal(err)
	}
	abs := filepath.Join(dir, "textures", "wood.png")
	writePNG(t, abs, color.NRGBA{R: 10, A: 255})
	t.Chdir(dir)

	loads := 0
	m := NewManager()
	load := m.load
	m.load = func(path string) (*image.NRGBA, error) {
		loads++
		return load(path)
	}

	rel := filepath.Join("textures", "wood.png")
	if _, err := m.Texture(rel); err != nil {
		t.Fatal(err)
	}
	writePNG(t, abs, color.NRGBA{R: 200, A: 255})
	m.Invalidate(abs)

	img, err := m.Texture(rel)
	if err != nil {
		t.Fatal(err)
	}
	if loads != 2 {
		t.Errorf("loads = %d, want 2", loads)
	}
	if got := img.Pix[0]; got != 200 {
		t.Errorf("red after invalidate = %d, want 200", got)
	}
	if m.cache.Len() != 1 {
		t.Errorf("cached entries = %d, want 1", m.cache.Len())
	}
}

func TestManagerMissingFile(t *testing.T) {
	m := NewManager()
	if _, err := m.Texture(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
	if m.cache.Len() != 0 {
		t.Error("failed load was cached")
	}
}

func TestCacheClear(t *testing.T) {
	c := NewCache()
	c.Set("a", image.NewNRGBA(image.Rect(0, 0, 1, 1)))
	c.Get("a")
	c.Get("b")
	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Len() = %d after Clear", c.Len())
	}
	if hits, misses := c.Stats(); hits != 0 || misses != 0 {
		t.Errorf("Stats() = %d, %d after Clear", hits, misses)
	}
}
