package domain

import "time"

type UploadRequest struct {
	Data     []byte
	Filename string
	Format   Format
}

type ConversionResult struct {
	ID           string
	Data         []byte
	MimeType     string
	Filename     string
	SourceFormat string
	Width        int
	Height       int
}

type ConversionStatus string

const (
	StatusCompleted ConversionStatus = "completed"
	StatusFailed    ConversionStatus = "failed"
)

// Conversion is the metadata kept about one conversion attempt. It never
// carries image bytes.
type Conversion struct {
	ID               string           `json:"id"`
	OriginalFilename string           `json:"original_filename"`
	DownloadFilename string           `json:"download_filename,omitempty"`
	SourceFormat     string           `json:"source_format,omitempty"`
	TargetFormat     Format           `json:"target_format"`
	InputSize        int64            `json:"input_size"`
	OutputSize       int64            `json:"output_size"`
	Width            int              `json:"width"`
	Height           int              `json:"height"`
	Status           ConversionStatus `json:"status"`
	Error            string           `json:"error,omitempty"`
	DurationMs       int64            `json:"duration_ms"`
	CreatedAt        time.Time        `json:"created_at"`
}
