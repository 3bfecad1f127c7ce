package domain

import "strings"

type Format string

const (
	FormatJPG Format = "jpg"
	FormatPNG Format = "png"
)

const DefaultFormat = FormatJPG

const (
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
)

const (
	DefaultMaxUploadSize = 32 << 20
	DefaultJPEGQuality   = 85
)

// ParseFormat lower-cases s and reports whether it names a supported output format.
func ParseFormat(s string) (Format, bool) {
	f := Format(strings.ToLower(s))
	return f, f.Valid()
}

func (f Format) Valid() bool {
	return f == FormatJPG || f == FormatPNG
}

func (f Format) MimeType() string {
	switch f {
	case FormatJPG:
		return MimeJPEG
	case FormatPNG:
		return MimePNG
	default:
		return ""
	}
}

func (f Format) String() string {
	return string(f)
}
