package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/starford/ansuz/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

func errorBody(err error) ErrorResponse {
	return ErrorResponse{Error: err.Error(), Kind: string(apperr.KindOf(err))}
}

// statusFor maps an error kind to the HTTP status of an invoke response.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindInvalidArgument:
		return http.StatusBadRequest
	case apperr.KindPermissionDenied:
		return http.StatusForbidden
	case apperr.KindNotFound, apperr.KindUnknownCommand:
		return http.StatusNotFound
	case apperr.KindAlreadyExists, apperr.KindIsADirectory, apperr.KindNotADirectory:
		return http.StatusConflict
	case apperr.KindInvalidEncoding:
		return http.StatusUnprocessableEntity
	case apperr.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
