package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lojasmm/dmassist/internal/api"
	"github.com/lojasmm/dmassist/internal/web"
)

const GeneratePath = "/api/generate"

func New(apiHandler *api.Handler, webHandler *web.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/", webHandler.HandlePage)

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", apiHandler.HandleGenerate)
		r.Get("/outcomes", apiHandler.HandleOutcomes)
	})

	return r
}
