package router

import (
	"net/http"

	"heic-converter/internal/http-server/handler/convert"
	"heic-converter/internal/http-server/handler/form"
	"heic-converter/internal/http-server/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Handler struct {
	ConvertHandler *convert.ConvertHandler
}

func SetupRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.RecoveryMiddleware)

	r.Get("/", form.Index)
	r.With(middleware.Recoverer(convert.MsgConversionFailed)).Post("/convert", h.ConvertHandler.Convert)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})
	})

	return r
}
