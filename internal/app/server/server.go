// Package server assembles the HTTP routing tree of the slug service.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/atinyakov/slugshare/internal/app/handler"
	"github.com/atinyakov/slugshare/internal/app/service"
	"github.com/atinyakov/slugshare/internal/middleware"
)

// Options tunes the router.
type Options struct {
	TrustedSubnet  string
	MaxUploadBytes int64
	// Files serves stored blobs under /files/. Nil disables the route.
	Files http.Handler
}

func Init(svc service.SlugServiceIface, auth service.AuthIface, opts Options, logger *zap.Logger) *chi.Mux {
	getHandler := handler.NewGet(svc, logger)
	postHandler := handler.NewPost(svc, logger, opts.MaxUploadBytes)
	patchHandler := handler.NewPatch(svc, logger)
	deleteHandler := handler.NewDelete(svc, logger)

	r := chi.NewRouter()
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(middleware.WithMetrics)

	r.Get("/ping", getHandler.PingDB)
	r.Handle("/metrics", promhttp.Handler())

	if opts.Files != nil {
		r.Handle("/files/*", opts.Files)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.WithGZIPPost)
		r.Use(middleware.WithGZIPGet)

		r.With(middleware.WithSubnet(opts.TrustedSubnet, logger)).Get("/internal/stats", getHandler.Stats)

		r.Group(func(r chi.Router) {
			r.Use(middleware.WithJWT(auth, logger))

			r.Get("/check-slug", getHandler.CheckSlug)
			r.Get("/slugs", getHandler.ListSlugs)
			r.Post("/slugs", postHandler.CreateSlug)
			r.Patch("/slugs/{id}", patchHandler.RenameSlug)
			r.Delete("/slugs/{id}", deleteHandler.DeleteSlug)
			r.Post("/submit", postHandler.Submit)
			r.Post("/upload", postHandler.Upload)
		})
	})

	r.Get("/{slug}", getHandler.ResolvePage)
	r.Get("/{slug}/file", getHandler.ResolveFile)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Slug is required", http.StatusBadRequest)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Route not found", http.StatusNotFound)
	})

	return r
}
