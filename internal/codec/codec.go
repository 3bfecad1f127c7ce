// Package codec registers the image decoders the converter accepts.
//
// The standard library contributes JPEG, PNG and GIF, golang.org/x/image
// contributes WebP, BMP and TIFF, and github.com/gen2brain/heic decodes
// HEIC/HEIF containers. HEIF files are ISO-BMFF boxes whose ftyp brand
// identifies the flavour, so one sniffing pattern is registered per brand.
package codec

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"sync"

	"github.com/gen2brain/heic"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const FormatHEIC = "heic"

var heifBrands = []string{"heic", "heix", "hevc", "hevx", "mif1", "msf1"}

var (
	once       sync.Once
	registered []string
)

// Register installs the HEIC/HEIF decoders with the image package. It must
// run before the first image.Decode call; repeated calls are no-ops.
func Register() {
	once.Do(func() {
		for _, brand := range heifBrands {
			image.RegisterFormat(FormatHEIC, "????ftyp"+brand, heic.Decode, heic.DecodeConfig)
		}
		registered = append(registered, FormatHEIC, "webp", "bmp", "tiff")
	})
}

// Formats returns the decoder names added on top of the standard library.
func Formats() []string {
	out := make([]string, len(registered))
	copy(out, registered)
	return out
}
