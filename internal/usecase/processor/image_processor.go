package processor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"time"

	"heic-converter/internal/domain"
	"heic-converter/internal/usecase/processor/operations"

	"github.com/wb-go/wbf/zlog"
)

type Output struct {
	Data         []byte
	MimeType     string
	SourceFormat string
	Width        int
	Height       int
}

var (
	flattener = operations.NewFlattener()
	encoder   = operations.NewEncoder()
)

// Convert decodes data with the registered codecs and re-encodes it as
// format. JPEG output is flattened to opaque RGB first; PNG output keeps
// the decoded color model. Identical input always yields identical output.
func Convert(data []byte, format domain.Format) (out *Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("%w: codec panic: %v", ErrDecode, r)
		}
	}()

	if !format.Valid() {
		return nil, fmt.Errorf("%w: unsupported output format %q", ErrEncode, format)
	}

	img, sourceFormat, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	if format == domain.FormatJPG {
		img = flattener.Process(img)
	}

	buf, err := encoder.Process(img, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	bounds := img.Bounds()
	return &Output{
		Data:         buf.Bytes(),
		MimeType:     format.MimeType(),
		SourceFormat: sourceFormat,
		Width:        bounds.Dx(),
		Height:       bounds.Dy(),
	}, nil
}

type ImageProcessor struct {
	logger *zlog.Zerolog
}

func NewImageProcessor(logger *zlog.Zerolog) *ImageProcessor {
	return &ImageProcessor{
		logger: logger,
	}
}

func (p *ImageProcessor) Process(ctx context.Context, data []byte, format domain.Format) (*Output, error) {
	start := time.Now()

	out, err := Convert(data, format)
	if err != nil {
		p.logger.Error().
			Err(err).
			Str("target_format", format.String()).
			Int("input_size", len(data)).
			Msg("Image conversion failed")
		return nil, err
	}

	p.logger.Debug().
		Str("source_format", out.SourceFormat).
		Str("target_format", format.String()).
		Int("width", out.Width).
		Int("height", out.Height).
		Int("output_size", len(out.Data)).
		Dur("duration", time.Since(start)).
		Msg("Image re-encoded")

	return out, nil
}
