package operations

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"heic-converter/internal/domain"

	"github.com/disintegration/imaging"
)

type Encoder struct {
	jpegQuality int
}

func NewEncoder() *Encoder {
	return &Encoder{jpegQuality: domain.DefaultJPEGQuality}
}

func (e *Encoder) Process(img image.Image, format domain.Format) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	var err error

	switch format {
	case domain.FormatJPG:
		err = imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(e.jpegQuality))
	case domain.FormatPNG:
		err = imaging.Encode(buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.DefaultCompression))
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", format, err)
	}

	return buf, nil
}
