package operations

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

type opaque interface {
	Opaque() bool
}

// Flattener composites an image onto a solid background so that no
// transparency is left for encoders without an alpha channel. The result
// is always an RGB-family image, so grayscale, paletted and CMYK sources
// come out as three-channel images as well.
type Flattener struct {
	background color.Color
}

func NewFlattener() *Flattener {
	return &Flattener{background: color.White}
}

func (f *Flattener) Process(img image.Image) image.Image {
	if opaqueRGB(img) {
		return img
	}

	bounds := img.Bounds()
	bg := imaging.New(bounds.Dx(), bounds.Dy(), f.background)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

// opaqueRGB reports whether img can go to a JPEG encoder as is.
func opaqueRGB(img image.Image) bool {
	switch img.(type) {
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64, *image.YCbCr:
		o, ok := img.(opaque)
		return ok && o.Opaque()
	default:
		return false
	}
}
