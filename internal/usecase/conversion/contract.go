package conversion

import (
	"context"

	"heic-converter/internal/domain"
	"heic-converter/internal/usecase/processor"
)

type imageProcessor interface {
	Process(ctx context.Context, data []byte, format domain.Format) (*processor.Output, error)
}

type journalRepository interface {
	Save(ctx context.Context, conversion *domain.Conversion) error
}

type eventProducer interface {
	PublishConversion(ctx context.Context, conversion *domain.Conversion) error
}
