package postgres

import (
	"context"
	"errors"
	"fmt"

	"heic-converter/internal/domain"
	"heic-converter/internal/repository/conversion"

	"github.com/lib/pq"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
)

const uniqueViolation = "23505"

type ConversionsRepository struct {
	db      *dbpg.DB
	retries retry.Strategy
}

func NewConversionsRepository(db *dbpg.DB, retries retry.Strategy) *ConversionsRepository {
	return &ConversionsRepository{
		db:      db,
		retries: retries,
	}
}

func (r *ConversionsRepository) Save(ctx context.Context, c *domain.Conversion) error {
	query := `
		INSERT INTO conversions (
			id, original_filename, download_filename, source_format, target_format,
			input_size, output_size, width, height,
			status, error, duration_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.ExecWithRetry(ctx, r.retries, query,
		c.ID,
		c.OriginalFilename,
		c.DownloadFilename,
		c.SourceFormat,
		string(c.TargetFormat),
		c.InputSize,
		c.OutputSize,
		c.Width,
		c.Height,
		string(c.Status),
		c.Error,
		c.DurationMs,
		c.CreatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return conversion.ErrDuplicateKey
		}
		return fmt.Errorf("%w: failed to save conversion: %w", conversion.ErrStorageError, err)
	}

	return nil
}

func (r *ConversionsRepository) Close() error {
	if r.db == nil || r.db.Master == nil {
		return nil
	}
	return r.db.Master.Close()
}
