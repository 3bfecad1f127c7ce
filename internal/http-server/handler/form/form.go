package form

import (
	_ "embed"
	"net/http"
	"strconv"
)

//go:embed templates/index.html
var indexHTML []byte

// Index serves the upload form. The page is compiled into the binary and
// never changes at runtime.
func Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(indexHTML)))
	w.WriteHeader(http.StatusOK)
	w.Write(indexHTML)
}
