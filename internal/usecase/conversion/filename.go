package conversion

import (
	"strings"

	"heic-converter/internal/domain"
)

// DownloadFilename replaces the last extension of the uploaded file's base
// name with format. Leading dots belong to the name, so ".heic" becomes
// ".heic.jpg" rather than ".jpg".
func DownloadFilename(original string, format domain.Format) string {
	return stripExtension(baseName(original)) + "." + format.String()
}

func baseName(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		return name[i+1:]
	}
	return name
}

func stripExtension(name string) string {
	dot := strings.LastIndex(name, ".")
	if dot <= 0 || strings.TrimLeft(name[:dot], ".") == "" {
		return name
	}
	return name[:dot]
}
