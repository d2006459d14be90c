package texture

import (
	"errors"
	"fmt"
	"image"
)

// TGA decoding errors.
var (
	ErrTGATooShort    = errors.New("TGA data too short")
	ErrTGATruncated   = errors.New("TGA data truncated")
	ErrTGAUnsupported = errors.New("unsupported TGA")
)

// TGA image types handled by DecodeTGA.
const (
	TGATypeUncompressed = 2  // true-color
	TGATypeGray         = 3  // 8-bit grayscale
	TGATypeRLE          = 10 // RLE true-color
	TGATypeRLEGray      = 11 // RLE grayscale
)

const (
	tgaHeaderSize  = 18
	tgaTopToBottom = 0x20 // image descriptor bit
)

type tgaHeader struct {
	idLength     int
	colorMapType byte
	imageType    byte
	width        int
	height       int
	bpp          int
	descriptor   byte
}

func parseTGAHeader(data []byte) tgaHeader {
	return tgaHeader{
		idLength:     int(data[0]),
		colorMapType: data[1],
		imageType:    data[2],
		width:        int(data[12]) | int(data[13])<<8,
		height:       int(data[14]) | int(data[15])<<8,
		bpp:          int(data[16]),
		descriptor:   data[17],
	}
}

func (h tgaHeader) gray() bool { return h.imageType == TGATypeGray || h.imageType == TGATypeRLEGray }
func (h tgaHeader) rle() bool  { return h.imageType == TGATypeRLE || h.imageType == TGATypeRLEGray }

func (h tgaHeader) check() error {
	if h.colorMapType != 0 {
		return fmt.Errorf("%w: color-mapped image", ErrTGAUnsupported)
	}
	switch h.imageType {
	case TGATypeUncompressed, TGATypeRLE:
		if h.bpp != 24 && h.bpp != 32 {
			return fmt.Errorf("%w: %d bits per true-color pixel", ErrTGAUnsupported, h.bpp)
		}
	case TGATypeGray, TGATypeRLEGray:
		if h.bpp != 8 {
			return fmt.Errorf("%w: %d bits per gray pixel", ErrTGAUnsupported, h.bpp)
		}
	default:
		return fmt.Errorf("%w: image type %d", ErrTGAUnsupported, h.imageType)
	}
	return nil
}

// DecodeTGA decodes true-color (24/32 bit) and 8-bit grayscale TGA files,
// raw or run-length encoded, which covers what DCC tools write for color,
// roughness and mask maps.
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < tgaHeaderSize {
		return nil, ErrTGATooShort
	}
	h := parseTGAHeader(data)
	if err := h.check(); err != nil {
		return nil, err
	}
	start := tgaHeaderSize + h.idLength
	if start > len(data) {
		return nil, ErrTGATruncated
	}

	img := image.NewNRGBA(image.Rect(0, 0, h.width, h.height))
	w := tgaWriter{img: img, size: h.bpp / 8, gray: h.gray(), flip: h.descriptor&tgaTopToBottom == 0}
	src := data[start:]

	var err error
	if h.rle() {
		err = w.decodeRLE(src)
	} else {
		err = w.decodeRaw(src)
	}
	if err != nil {
		return nil, err
	}
	return img, nil
}

// tgaWriter stores pixels in file order, turning bottom-up files right
// side up.
type tgaWriter struct {
	img  *image.NRGBA
	size int // bytes per pixel
	gray bool
	flip bool
	next int // pixels written
}

func (w *tgaWriter) total() int { return w.img.Rect.Dx() * w.img.Rect.Dy() }

// put writes one source pixel (BGR[A] or gray) n times.
func (w *tgaWriter) put(px []byte, n int) {
	var r, g, b, a byte = px[0], px[0], px[0], 255
	if !w.gray {
		b, g, r = px[0], px[1], px[2]
		if w.size == 4 {
			a = px[3]
		}
	}
	width := w.img.Rect.Dx()
	for ; n > 0 && w.next < w.total(); n-- {
		x, y := w.next%width, w.next/width
		if w.flip {
			y = w.img.Rect.Dy() - 1 - y
		}
		i := w.img.PixOffset(x, y)
		copy(w.img.Pix[i:i+4], []byte{r, g, b, a})
		w.next++
	}
}

func (w *tgaWriter) decodeRaw(src []byte) error {
	if len(src) < w.total()*w.size {
		return ErrTGATruncated
	}
	for off := 0; w.next < w.total(); off += w.size {
		w.put(src[off:off+w.size], 1)
	}
	return nil
}

func (w *tgaWriter) decodeRLE(src []byte) error {
	off := 0
	for w.next < w.total() {
		if off >= len(src) {
			return ErrTGATruncated
		}
		header := src[off]
		off++
		count := int(header&0x7f) + 1

		if header&0x80 != 0 {
			if off+w.size > len(src) {
				return ErrTGATruncated
			}
			w.put(src[off:off+w.size], count)
			off += w.size
			continue
		}
		if off+count*w.size > len(src) {
			return ErrTGATruncated
		}
		for i := 0; i < count; i++ {
			w.put(src[off:off+w.size], 1)
			off += w.size
		}
	}
	return nil
}
