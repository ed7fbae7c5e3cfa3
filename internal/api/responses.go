package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vietddude/fridgechef/internal/chef"
	"github.com/vietddude/fridgechef/internal/genai"
	"github.com/vietddude/fridgechef/internal/infra/storage"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

// writeServiceError maps domain and executor errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var statusErr *genai.StatusError
	switch {
	case errors.Is(err, chef.ErrMissingUser):
		writeError(w, http.StatusUnauthorized, "missing_user", "set the "+UserHeader+" header")
	case errors.Is(err, chef.ErrEmptyImage),
		errors.Is(err, chef.ErrUnsupportedImage),
		errors.Is(err, chef.ErrNoIngredients),
		errors.Is(err, chef.ErrEmptyInstruction),
		errors.Is(err, chef.ErrInvalidRecipe):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, chef.ErrQuotaExceeded):
		writeError(w, http.StatusTooManyRequests, "quota_exceeded", err.Error())
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "")
	case errors.Is(err, storage.ErrDuplicate):
		writeError(w, http.StatusConflict, "already_exists", "")
	case errors.Is(err, chef.ErrBadModelOutput), errors.Is(err, chef.ErrNoRecipesProduced):
		writeError(w, http.StatusBadGateway, "bad_model_output", err.Error())
	case errors.Is(err, genai.ErrRetriesExhausted):
		writeError(w, http.StatusServiceUnavailable, "model_unavailable", "the recipe model is busy, try again later")
	case errors.As(err, &statusErr):
		writeError(w, http.StatusBadGateway, "model_error", statusErr.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "timeout", "")
	case errors.Is(err, context.Canceled):
		// Client went away
		w.WriteHeader(499)
	default:
		slog.Error("Request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}
