package conversion

import (
	"context"
	"fmt"
	"sync"
	"time"

	"heic-converter/internal/domain"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
)

const defaultTrackTimeout = 5 * time.Second

// ConversionUsecase converts uploads. Each attempt is recorded in the
// background; Wait drains pending recordings.
type ConversionUsecase struct {
	processor    imageProcessor
	journal      journalRepository
	producer     eventProducer
	logger       *zlog.Zerolog
	trackTimeout time.Duration
	tracking     sync.WaitGroup
}

type Option func(*ConversionUsecase)

// WithJournal records every conversion attempt in j.
func WithJournal(j journalRepository) Option {
	return func(u *ConversionUsecase) {
		u.journal = j
	}
}

// WithEvents publishes every conversion attempt through p.
func WithEvents(p eventProducer) Option {
	return func(u *ConversionUsecase) {
		u.producer = p
	}
}

// WithTrackTimeout bounds how long recording a single attempt may take.
func WithTrackTimeout(d time.Duration) Option {
	return func(u *ConversionUsecase) {
		if d > 0 {
			u.trackTimeout = d
		}
	}
}

func NewConversionUsecase(processor imageProcessor, logger *zlog.Zerolog, opts ...Option) *ConversionUsecase {
	u := &ConversionUsecase{
		processor:    processor,
		logger:       logger,
		trackTimeout: defaultTrackTimeout,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *ConversionUsecase) Convert(ctx context.Context, req *domain.UploadRequest) (*domain.ConversionResult, error) {
	if !req.Format.Valid() {
		return nil, ErrInvalidFormat
	}

	start := time.Now()
	record := &domain.Conversion{
		ID:               uuid.New().String(),
		OriginalFilename: req.Filename,
		TargetFormat:     req.Format,
		InputSize:        int64(len(req.Data)),
		CreatedAt:        start.UTC(),
	}

	out, err := u.processor.Process(ctx, req.Data, req.Format)
	record.DurationMs = time.Since(start).Milliseconds()
	if err != nil {
		record.Status = domain.StatusFailed
		record.Error = err.Error()
		u.track(ctx, record)
		return nil, fmt.Errorf("%w: %w", ErrConversionFailed, err)
	}

	filename := DownloadFilename(req.Filename, req.Format)

	record.Status = domain.StatusCompleted
	record.DownloadFilename = filename
	record.SourceFormat = out.SourceFormat
	record.OutputSize = int64(len(out.Data))
	record.Width = out.Width
	record.Height = out.Height
	u.track(ctx, record)

	u.logger.Info().
		Str("conversion_id", record.ID).
		Str("filename", req.Filename).
		Str("download_filename", filename).
		Str("source_format", out.SourceFormat).
		Str("target_format", req.Format.String()).
		Int64("duration_ms", record.DurationMs).
		Msg("Image converted")

	return &domain.ConversionResult{
		ID:           record.ID,
		Data:         out.Data,
		MimeType:     out.MimeType,
		Filename:     filename,
		SourceFormat: out.SourceFormat,
		Width:        out.Width,
		Height:       out.Height,
	}, nil
}

// Wait blocks until every recording started by Convert has finished.
func (u *ConversionUsecase) Wait() {
	u.tracking.Wait()
}

// track stores and publishes the record in a separate goroutine. Failures
// are logged and never returned to the caller.
func (u *ConversionUsecase) track(ctx context.Context, record *domain.Conversion) {
	if u.journal == nil && u.producer == nil {
		return
	}

	ctx = context.WithoutCancel(ctx)
	u.tracking.Add(1)
	go func() {
		defer u.tracking.Done()
		u.persist(ctx, record)
	}()
}

func (u *ConversionUsecase) persist(ctx context.Context, record *domain.Conversion) {
	ctx, cancel := context.WithTimeout(ctx, u.trackTimeout)
	defer cancel()

	if u.journal != nil {
		if err := u.journal.Save(ctx, record); err != nil {
			u.logger.Error().Err(err).Str("conversion_id", record.ID).Msg("Failed to save conversion to journal")
		}
	}

	if u.producer != nil {
		if err := u.producer.PublishConversion(ctx, record); err != nil {
			u.logger.Error().Err(err).Str("conversion_id", record.ID).Msg("Failed to publish conversion event")
		}
	}
}
