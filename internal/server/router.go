// Package server assembles the HTTP router.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	appMiddleware "github.com/radif/medias/internal/middleware"
	"github.com/radif/medias/internal/media"
)

// Deps are the collaborators the router needs.
type Deps struct {
	Log   *zap.Logger
	Media *media.Handler
	// UploadsDir is served at /uploads/ when set (development mode).
	UploadsDir string
}

// NewRouter builds the chi router with middleware and all routes.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger(d.Log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Same path the web app posts to.
	r.Post("/api/medias", d.Media.Upload)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/medias", func(r chi.Router) {
			r.Post("/", d.Media.Upload)
			r.Get("/", d.Media.List)
		})
	})

	if d.UploadsDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.UploadsDir)))
		r.Handle("/uploads/*", fs)
	}

	return r
}
