package handlers

import (
	"errors"
	"net/http"

	"wallit/internal/middleware"
	"wallit/internal/services"
	"wallit/internal/statement"

	"github.com/go-chi/chi/v5"
)

// UploadStatements accepts a multipart form where each part is keyed by
// the declared bank origin and carries one statement file.
func (h *Handler) UploadStatements(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart payload")
		return
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File) == 0 {
		respondJSON(w, http.StatusBadRequest, map[string]string{"info": "No files were provided."})
		return
	}

	var files []services.StatementFile
	for origin, headers := range r.MultipartForm.File {
		for _, header := range headers {
			content, err := header.Open()
			if err != nil {
				respondError(w, http.StatusBadRequest, "unreadable upload")
				return
			}
			files = append(files, services.StatementFile{
				Origin:   origin,
				Filename: header.Filename,
				Content:  content,
			})
		}
	}

	outcome, err := h.ingestion.Upload(r.Context(), userID, files)
	if err != nil {
		if errors.Is(err, services.ErrEmptyUpload) {
			respondJSON(w, http.StatusBadRequest, map[string]string{"info": "No files were provided."})
			return
		}
		if errors.Is(err, statement.ErrUnknownOrigin) {
			respondError(w, http.StatusInternalServerError, "statement origin is not configured")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to store transactions")
		return
	}
	respondJSON(w, uploadStatus(outcome), outcome)
}

// uploadStatus maps the per-file outcome onto a response code: everything
// failed, a mix, or a clean run.
func uploadStatus(outcome services.UploadOutcome) int {
	switch {
	case len(outcome.Failed) == 0:
		return http.StatusCreated
	case len(outcome.Success) == 0:
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusPartialContent
	}
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	transactions, err := h.transactions.ListByUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load transactions")
		return
	}
	respondJSON(w, http.StatusOK, transactions)
}

func (h *Handler) MonthlySaldo(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if chi.URLParam(r, "id") != userID {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}
	saldo, err := h.saldo.Monthly(r.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrNoTransactions) {
			respondError(w, http.StatusNotFound, "user has no transactions to build summary from")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to build summary")
		return
	}
	respondJSON(w, http.StatusOK, saldo)
}
