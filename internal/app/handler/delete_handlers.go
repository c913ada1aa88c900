package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/slugshare/internal/app/service"
	"github.com/atinyakov/slugshare/internal/middleware"
	"github.com/atinyakov/slugshare/internal/models"
)

type DeleteHandler struct {
	service service.SlugServiceIface
	logger  *zap.Logger
}

func NewDelete(s service.SlugServiceIface, l *zap.Logger) *DeleteHandler {
	return &DeleteHandler{
		service: s,
		logger:  l,
	}
}

// DeleteSlug handles DELETE /api/slugs/{id}.
func (h *DeleteHandler) DeleteSlug(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	r, err := h.service.DeleteSlug(ctx, middleware.UserID(req.Context()), chi.URLParam(req, "id"))
	if err != nil {
		writeServiceError(res, h.logger, err)
		return
	}

	writeJSON(res, http.StatusOK, models.MessageResponse{
		Message: fmt.Sprintf("Slug %q deleted successfully", r.Slug),
	})
}
