package broker

import (
	"context"

	"heic-converter/internal/domain"
)

// ConversionPublisher announces finished conversion attempts.
type ConversionPublisher interface {
	PublishConversion(ctx context.Context, conversion *domain.Conversion) error
	Close() error
}
