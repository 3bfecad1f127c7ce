package convert

import (
	"context"

	"heic-converter/internal/domain"
)

type conversionUsecase interface {
	Convert(ctx context.Context, req *domain.UploadRequest) (*domain.ConversionResult, error)
}
