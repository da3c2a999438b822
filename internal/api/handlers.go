package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/command"
	"github.com/starford/ansuz/internal/models"
)

const maxBodyBytes = 64 << 20

// Journal is the read side of the invocation journal.
type Journal interface {
	Recent(ctx context.Context, limit int) ([]models.Invocation, error)
}

// Handler holds API route handlers.
type Handler struct {
	reg *command.Registry
	jr  Journal
}

// NewHandler creates a new Handler. jr may be nil.
func NewHandler(reg *command.Registry, jr Journal) *Handler {
	return &Handler{reg: reg, jr: jr}
}

// ListCommands handles GET /api/commands.
//
//	@Summary		List the invokable commands and their parameters
//	@Tags			commands
//	@Produce		json
//	@Success		200	{object}	CommandListResponse
//	@Router			/commands [get]
func (h *Handler) ListCommands(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, CommandListResponse{Commands: h.reg.Commands()})
}

// Invoke handles POST /api/invoke/{command}.
//
//	@Summary		Invoke a command with named JSON arguments
//	@Tags			commands
//	@Accept			json
//	@Produce		json
//	@Param			command	path		string	true	"Command name"
//	@Param			body	body		object	false	"Named arguments, e.g. {\"path\": \"...\"}"
//	@Success		200		{object}	InvokeResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/invoke/{command} [post]
func (h *Handler) Invoke(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "command")
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{
				Error: "request body too large",
				Kind:  string(apperr.KindInvalidArgument),
			})
			return
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "failed to read body",
			Kind:  string(apperr.KindInvalidArgument),
		})
		return
	}

	result, err := h.reg.Invoke(r.Context(), name, body)
	if err != nil {
		kind := apperr.KindOf(err)
		status := statusFor(kind)
		if status >= http.StatusInternalServerError {
			slog.Error("command failed",
				slog.String("command", name),
				slog.String("kind", string(kind)),
				slog.String("error", err.Error()))
		}
		writeJSON(w, status, errorBody(err))
		return
	}
	writeJSON(w, http.StatusOK, InvokeResponse{Result: result})
}

// Journal handles GET /api/journal.
//
//	@Summary		Recent command invocations, newest first
//	@Tags			journal
//	@Produce		json
//	@Param			limit	query		int	false	"Max entries"
//	@Success		200		{object}	JournalResponse
//	@Router			/journal [get]
func (h *Handler) Journal(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	invs, err := h.jr.Recent(r.Context(), limit)
	if err != nil {
		slog.Error("journal read failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error", Kind: string(apperr.KindIO)})
		return
	}
	writeJSON(w, http.StatusOK, JournalResponse{Invocations: invs})
}
