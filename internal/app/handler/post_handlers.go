package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/slugshare/internal/app/service"
	"github.com/atinyakov/slugshare/internal/middleware"
	"github.com/atinyakov/slugshare/internal/models"
)

// DefaultMaxUploadBytes caps multipart uploads when no limit is configured.
const DefaultMaxUploadBytes = 10 << 20

type PostHandler struct {
	service        service.SlugServiceIface
	logger         *zap.Logger
	maxUploadBytes int64
}

func NewPost(s service.SlugServiceIface, l *zap.Logger, maxUploadBytes int64) *PostHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}

	return &PostHandler{
		service:        s,
		logger:         l,
		maxUploadBytes: maxUploadBytes,
	}
}

// CreateSlug handles POST /api/slugs with a JSON {slug, fileUrl} body.
func (h *PostHandler) CreateSlug(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	var request models.CreateSlugRequest
	if err := decodeJSONBody(res, req, &request); err != nil {
		writeDecodeError(res, h.logger, err)
		return
	}

	r, err := h.service.CreateSlug(ctx, middleware.UserID(req.Context()), request.Slug, request.FileURL)
	if err != nil {
		writeServiceError(res, h.logger, err)
		return
	}

	writeJSON(res, http.StatusCreated, models.SlugResponse{Data: toModel(*r)})
}

// Submit handles POST /api/submit: a multipart "file" and "slug" committed
// together.
func (h *PostHandler) Submit(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 30*time.Second)
	defer cancel()

	upload, closeFile, ok := h.readUpload(res, req)
	if !ok {
		return
	}
	defer closeFile()

	r, err := h.service.CreateFromUpload(ctx, middleware.UserID(req.Context()), req.FormValue("slug"), upload)
	if err != nil {
		writeServiceError(res, h.logger, err)
		return
	}

	writeJSON(res, http.StatusCreated, models.SlugResponse{Data: toModel(*r)})
}

// Upload handles POST /api/upload and returns where the file is served from.
func (h *PostHandler) Upload(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 30*time.Second)
	defer cancel()

	upload, closeFile, ok := h.readUpload(res, req)
	if !ok {
		return
	}
	defer closeFile()

	url, err := h.service.Upload(ctx, middleware.UserID(req.Context()), upload)
	if err != nil {
		writeServiceError(res, h.logger, err)
		return
	}

	writeJSON(res, http.StatusOK, models.UploadResponse{FileURL: url})
}

// readUpload parses the multipart form and opens its "file" part. It writes
// the error response itself when it returns false.
func (h *PostHandler) readUpload(res http.ResponseWriter, req *http.Request) (service.FileUpload, func(), bool) {
	req.Body = http.MaxBytesReader(res, req.Body, h.maxUploadBytes)

	if err := req.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			writeErrorBody(res, http.StatusBadRequest, "VALIDATION_ERROR", "File is too large", "")
			return service.FileUpload{}, nil, false
		}
		writeErrorBody(res, http.StatusBadRequest, "VALIDATION_ERROR", "Request must be multipart/form-data", "")
		return service.FileUpload{}, nil, false
	}

	file, header, err := req.FormFile("file")
	if err != nil {
		writeErrorBody(res, http.StatusBadRequest, "VALIDATION_ERROR", "No file provided", "")
		return service.FileUpload{}, nil, false
	}

	upload := service.FileUpload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	}
	return upload, func() { file.Close() }, true
}
