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

type PatchHandler struct {
	service service.SlugServiceIface
	logger  *zap.Logger
}

func NewPatch(s service.SlugServiceIface, l *zap.Logger) *PatchHandler {
	return &PatchHandler{
		service: s,
		logger:  l,
	}
}

// RenameSlug handles PATCH /api/slugs/{id} with a JSON {slug} body.
func (h *PatchHandler) RenameSlug(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	var request models.RenameSlugRequest
	if err := decodeJSONBody(res, req, &request); err != nil {
		writeDecodeError(res, h.logger, err)
		return
	}

	r, err := h.service.RenameSlug(ctx, middleware.UserID(req.Context()), chi.URLParam(req, "id"), request.Slug)
	if err != nil {
		writeServiceError(res, h.logger, err)
		return
	}

	writeJSON(res, http.StatusOK, models.SlugResponse{Data: toModel(*r)})
}
