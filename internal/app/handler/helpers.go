// Package handler is the HTTP boundary of the slug service. Each handler
// decodes its own request schema, calls the service and maps typed service
// errors onto statuses and the {code, error, slug} error body.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/slugshare/internal/app/service"
	"github.com/atinyakov/slugshare/internal/models"
	"github.com/atinyakov/slugshare/internal/storage"
)

// malformedRequest represents an error with a malformed HTTP request.
type malformedRequest struct {
	status int
	msg    string
}

func (mr *malformedRequest) Error() string {
	return mr.msg
}

// decodeJSONBody decodes a single JSON object from the request body into dst,
// rejecting unknown fields and bodies over 1MB.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	ct := r.Header.Get("Content-Type")
	if ct != "" {
		mediaType := strings.ToLower(strings.TrimSpace(strings.Split(ct, ";")[0]))
		if mediaType != "application/json" {
			msg := "Content-Type header is not application/json"
			return &malformedRequest{status: http.StatusUnsupportedMediaType, msg: msg}
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(&dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			msg := fmt.Sprintf("Request body contains badly-formed JSON (at position %d)", syntaxError.Offset)
			return &malformedRequest{status: http.StatusBadRequest, msg: msg}

		case errors.Is(err, io.ErrUnexpectedEOF):
			msg := "Request body contains badly-formed JSON"
			return &malformedRequest{status: http.StatusBadRequest, msg: msg}

		case errors.As(err, &unmarshalTypeError):
			msg := fmt.Sprintf("Request body contains an invalid value for the %q field (at position %d)", unmarshalTypeError.Field, unmarshalTypeError.Offset)
			return &malformedRequest{status: http.StatusBadRequest, msg: msg}

		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			msg := fmt.Sprintf("Request body contains unknown field %s", fieldName)
			return &malformedRequest{status: http.StatusBadRequest, msg: msg}

		case errors.Is(err, io.EOF):
			msg := "Request body must not be empty"
			return &malformedRequest{status: http.StatusBadRequest, msg: msg}

		case errors.As(err, &maxBytesError):
			msg := "Request body must not be larger than 1MB"
			return &malformedRequest{status: http.StatusRequestEntityTooLarge, msg: msg}

		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		msg := "Request body must only contain a single JSON object"
		return &malformedRequest{status: http.StatusBadRequest, msg: msg}
	}

	return nil
}

func writeJSON(res http.ResponseWriter, status int, v any) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)
	_ = json.NewEncoder(res).Encode(v)
}

func writeErrorBody(res http.ResponseWriter, status int, code, msg, slug string) {
	writeJSON(res, status, models.ErrorResponse{Code: code, Error: msg, Slug: slug})
}

// writeDecodeError answers a failed decodeJSONBody.
func writeDecodeError(res http.ResponseWriter, logger *zap.Logger, err error) {
	var mr *malformedRequest
	if errors.As(err, &mr) {
		writeErrorBody(res, mr.status, "VALIDATION_ERROR", mr.msg, "")
		return
	}
	logger.Error("cannot decode request", zap.Error(err))
	writeErrorBody(res, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", "")
}

var kindStatus = map[service.Kind]int{
	service.KindValidation:   http.StatusBadRequest,
	service.KindUnauthorized: http.StatusUnauthorized,
	service.KindForbidden:    http.StatusForbidden,
	service.KindNotFound:     http.StatusNotFound,
	service.KindConflict:     http.StatusConflict,
	service.KindDependency:   http.StatusInternalServerError,
}

// writeServiceError maps a service failure onto the HTTP error body.
// Anything unclassified is a 500 with a generic message.
func writeServiceError(res http.ResponseWriter, logger *zap.Logger, err error) {
	var se *service.Error
	if !errors.As(err, &se) {
		logger.Error("unclassified service error", zap.Error(err))
		writeErrorBody(res, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", "")
		return
	}

	status, ok := kindStatus[se.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	msg := se.Msg
	if status == http.StatusInternalServerError {
		msg = se.Msg + ". Please try again."
	}
	writeErrorBody(res, status, se.Kind.String(), msg, se.Slug)
}

func toModel(r storage.SlugRecord) models.Slug {
	return models.Slug{
		ID:        r.ID,
		Slug:      r.Slug,
		FileURL:   r.FileURL,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
