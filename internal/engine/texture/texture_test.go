package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestDecodeTGA_Uncompressed(t *testing.T) {
	// 2x1 bottom-up 24-bit image: left pixel blue, right pixel red (BGR order)
	data := make([]byte, 18)
	data[2] = TGATypeUncompressed
	data[12] = 2
	data[14] = 1
	data[16] = 24
	data = append(data, 255, 0, 0, 0, 0, 255)

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("DecodeTGA: %v", err)
	}
	n := img.(*image.NRGBA)
	if got := n.NRGBAAt(0, 0); got != (color.NRGBA{0, 0, 255, 255}) {
		t.Errorf("pixel 0 = %v, want blue", got)
	}
	if got := n.NRGBAAt(1, 0); got != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("pixel 1 = %v, want red", got)
	}
}

func TestDecodeTGA_RLE(t *testing.T) {
	data := make([]byte, 18)
	data[2] = TGATypeRLE
	data[12] = 3
	data[14] = 1
	data[16] = 32
	data[17] = 0x20 // top-to-bottom
	// one run packet of 3 pixels: BGRA (10, 20, 30, 40)
	data = append(data, 0x82, 10, 20, 30, 40)

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("DecodeTGA: %v", err)
	}
	n := img.(*image.NRGBA)
	for x := 0; x < 3; x++ {
		if got := n.NRGBAAt(x, 0); got != (color.NRGBA{30, 20, 10, 40}) {
			t.Errorf("pixel %d = %v", x, got)
		}
	}
}

func TestDecodeTGA_Errors(t *testing.T) {
	if _, err := DecodeTGA([]byte{1, 2, 3}); err != ErrTGATooShort {
		t.Errorf("expected ErrTGATooShort, got %v", err)
	}

	data := make([]byte, 18)
	data[2] = TGATypeUncompressed
	data[12] = 4
	data[14] = 4
	data[16] = 32
	if _, err := DecodeTGA(data); err != ErrTGATruncated {
		t.Errorf("expected ErrTGATruncated, got %v", err)
	}

	data[2] = 1
	if _, err := DecodeTGA(data); !errors.Is(err, ErrTGAUnsupported) {
		t.Errorf("expected ErrTGAUnsupported for color-mapped type, got %v", err)
	}

	// run packet announcing more pixels than the data holds
	rle := make([]byte, 18)
	rle[2] = TGATypeRLE
	rle[12] = 4
	rle[14] = 1
	rle[16] = 24
	rle = append(rle, 0x81, 1, 2, 3)
	if _, err := DecodeTGA(rle); err != ErrTGATruncated {
		t.Errorf("expected ErrTGATruncated for short RLE data, got %v", err)
	}
}

func TestDecodeTGA_Gray(t *testing.T) {
	tests := []struct {
		name  string
		typ   byte
		pixel []byte
	}{
		{"raw", TGATypeGray, []byte{10, 200}},
		{"rle", TGATypeRLEGray, []byte{0x01, 10, 200}}, // raw packet of 2
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]byte, 18)
			data[2] = tt.typ
			data[12] = 1
			data[14] = 2
			data[16] = 8
			data = append(data, tt.pixel...)

			img, err := DecodeTGA(data)
			if err != nil {
				t.Fatalf("DecodeTGA: %v", err)
			}
			n := img.(*image.NRGBA)
			// bottom-up: the first stored pixel is the bottom row
			if got := n.NRGBAAt(0, 1); got != (color.NRGBA{10, 10, 10, 255}) {
				t.Errorf("bottom = %v", got)
			}
			if got := n.NRGBAAt(0, 0); got != (color.NRGBA{200, 200, 200, 255}) {
				t.Errorf("top = %v", got)
			}
		})
	}
}

func TestLoadPNG(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.SetNRGBA(1, 1, color.NRGBA{1, 2, 3, 4})

	path := filepath.Join(t.TempDir(), "map.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, src); err != nil {
		t.Fatal(err)
	}
	f.Close()

	img, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := img.NRGBAAt(1, 1); got != (color.NRGBA{1, 2, 3, 4}) {
		t.Errorf("loaded pixel = %v", got)
	}
}

func TestLoadSniffsFormat(t *testing.T) {
	dir := t.TempDir()

	// a PNG with the wrong extension still decodes as PNG
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.SetNRGBA(0, 0, color.NRGBA{9, 8, 7, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}
	misnamed := filepath.Join(dir, "rough.tga")
	if err := os.WriteFile(misnamed, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	img, err := Load(misnamed)
	if err != nil {
		t.Fatalf("Load(misnamed png): %v", err)
	}
	if got := img.NRGBAAt(0, 0); got != (color.NRGBA{9, 8, 7, 255}) {
		t.Errorf("pixel = %v", got)
	}

	// TGA is found by extension
	tga := make([]byte, 18)
	tga[2] = TGATypeGray
	tga[12], tga[14], tga[16] = 1, 1, 8
	tga = append(tga, 77)
	tgaPath := filepath.Join(dir, "mask.TGA")
	if err := os.WriteFile(tgaPath, tga, 0o644); err != nil {
		t.Fatal(err)
	}
	img, err = Load(tgaPath)
	if err != nil {
		t.Fatalf("Load(tga): %v", err)
	}
	if got := img.NRGBAAt(0, 0); got != (color.NRGBA{77, 77, 77, 255}) {
		t.Errorf("tga pixel = %v", got)
	}

	// plain text is rejected
	txt := filepath.Join(dir, "notes.png")
	if err := os.WriteFile(txt, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(txt); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Load(text) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load("/nonexistent/map.png"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSampleTexelCenters(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{255, 0, 0, 255}) // top-left
	img.SetNRGBA(0, 1, color.NRGBA{0, 255, 0, 255}) // bottom-left

	// bottom-left texel center in UV space
	got := Sample(img, 0.25, 0.25)
	if got[1] != 1 || got[0] != 0 {
		t.Errorf("bottom-left sample = %v, want green", got)
	}

	// top-left texel center
	got = Sample(img, 0.25, 0.75)
	if got[0] != 1 || got[1] != 0 {
		t.Errorf("top-left sample = %v, want red", got)
	}
}

func TestSRGBRoundTrip(t *testing.T) {
	for _, c := range []float32{0, 0.002, 0.18, 0.5, 1} {
		back := SRGBToLinear(LinearToSRGB(c))
		if d := back - c; d > 1e-5 || d < -1e-5 {
			t.Errorf("round trip of %v gave %v", c, back)
		}
	}
}

func TestQuantize(t *testing.T) {
	tests := []struct {
		in   float32
		want uint8
	}{
		{-1, 0},
		{0, 0},
		{0.5, 128},
		{1, 255},
		{2, 255},
	}
	for _, tt := range tests {
		if got := Quantize(tt.in); got != tt.want {
			t.Errorf("Quantize(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
