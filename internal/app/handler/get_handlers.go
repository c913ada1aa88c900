package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/slugshare/internal/app/service"
	"github.com/atinyakov/slugshare/internal/middleware"
	"github.com/atinyakov/slugshare/internal/models"
)

type GetHandler struct {
	service service.SlugServiceIface
	logger  *zap.Logger
}

func NewGet(s service.SlugServiceIface, l *zap.Logger) *GetHandler {
	return &GetHandler{
		service: s,
		logger:  l,
	}
}

// CheckSlug handles GET /api/check-slug?slug=&exclude=.
func (h *GetHandler) CheckSlug(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	q := req.URL.Query()
	result, err := h.service.CheckAvailability(ctx, q.Get("slug"), q.Get("exclude"))
	if err != nil {
		writeServiceError(res, h.logger, err)
		return
	}

	writeJSON(res, http.StatusOK, result)
}

// ListSlugs handles GET /api/slugs.
func (h *GetHandler) ListSlugs(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	records, err := h.service.ListSlugs(ctx, middleware.UserID(req.Context()))
	if err != nil {
		writeServiceError(res, h.logger, err)
		return
	}

	out := models.ListSlugsResponse{Slugs: make([]models.Slug, 0, len(records))}
	for _, r := range records {
		out.Slugs = append(out.Slugs, toModel(r))
	}

	writeJSON(res, http.StatusOK, out)
}

// ResolvePage handles GET /{slug} with an HTML page showing the document.
func (h *GetHandler) ResolvePage(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	slug := chi.URLParam(req, "slug")
	r, err := h.service.Resolve(ctx, slug)
	if err != nil {
		status := http.StatusNotFound
		if service.KindOf(err) != service.KindNotFound {
			status = http.StatusInternalServerError
		}
		renderMissing(res, h.logger, status, slug)
		return
	}

	renderDocument(res, h.logger, *r)
}

// ResolveFile handles GET /{slug}/file by redirecting to the stored file.
func (h *GetHandler) ResolveFile(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	slug := chi.URLParam(req, "slug")
	r, err := h.service.Resolve(ctx, slug)
	if err != nil {
		writeServiceError(res, h.logger, err)
		return
	}

	res.Header().Set("Location", r.FileURL)
	res.WriteHeader(http.StatusTemporaryRedirect)
}

func (h *GetHandler) PingDB(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()
	if err := h.service.PingContext(ctx); err != nil {
		h.logger.Warn("ping failed", zap.Error(err))
		http.Error(res, err.Error(), http.StatusInternalServerError)
		return
	}

	res.WriteHeader(http.StatusOK)
}

// Stats handles GET /api/internal/stats.
func (h *GetHandler) Stats(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	stats, err := h.service.GetStats(ctx)
	if err != nil {
		writeServiceError(res, h.logger, err)
		return
	}

	writeJSON(res, http.StatusOK, models.StatsResponse{Slugs: stats.Slugs, Users: stats.Users})
}
