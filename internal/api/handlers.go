package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/vietddude/fridgechef/internal/chef"
	"github.com/vietddude/fridgechef/internal/core/domain"
)

const maxUserIDLength = 128

type handler struct {
	svc *chef.Service
}

type detectRequest struct {
	Image    string `json:"image"` // base64 or data URL
	MimeType string `json:"mimeType"`
}

type detectResponse struct {
	Ingredients []domain.Ingredient `json:"ingredients"`
}

type generateRequest struct {
	Ingredients []domain.Ingredient `json:"ingredients"`
	Preferences *domain.Preferences `json:"preferences,omitempty"`
}

type recipesResponse struct {
	Recipes []domain.Recipe `json:"recipes"`
}

type adaptRequest struct {
	Recipe      domain.Recipe `json:"recipe"`
	Instruction string        `json:"instruction"`
}

type favoriteRequest struct {
	Recipe domain.Recipe `json:"recipe"`
}

type profileRequest struct {
	DisplayName string             `json:"display_name"`
	Preferences domain.Preferences `json:"preferences"`
}

type streakResponse struct {
	*domain.Streak
	ActiveToday bool `json:"active_today"`
}

func userID(r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.Header.Get(UserHeader))
	if id == "" || len(id) > maxUserIDLength {
		return "", false
	}
	return id, true
}

// requireUser writes 401 and returns false when the header is missing.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := userID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_user", "set the "+UserHeader+" header")
	}
	return id, ok
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxImageBytes*2)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

func (h *handler) handleDetect(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	image, mimeType, err := readImage(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "image_too_large", "")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_image", err.Error())
		return
	}

	ingredients, err := h.svc.DetectIngredients(r.Context(), user, image, mimeType)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detectResponse{Ingredients: ingredients})
}

// readImage accepts a multipart "image" field or a JSON body.
func readImage(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, MaxImageBytes+1<<20)
		file, header, err := r.FormFile("image")
		if err != nil {
			return nil, "", err
		}
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, MaxImageBytes+1))
		if err != nil {
			return nil, "", err
		}
		if len(data) > MaxImageBytes {
			return nil, "", &http.MaxBytesError{Limit: MaxImageBytes}
		}
		return data, header.Header.Get("Content-Type"), nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxImageBytes*2)
	var req detectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, "", err
	}
	encoded, mimeType := req.Image, req.MimeType
	// data:image/png;base64,....
	if rest, ok := strings.CutPrefix(encoded, "data:"); ok {
		meta, payload, found := strings.Cut(rest, ",")
		if !found {
			return nil, "", errors.New("malformed data URL")
		}
		if mimeType == "" {
			mimeType = strings.TrimSuffix(meta, ";base64")
		}
		encoded = payload
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", err
	}
	if len(data) > MaxImageBytes {
		return nil, "", &http.MaxBytesError{Limit: MaxImageBytes}
	}
	return data, mimeType, nil
}

func (h *handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req generateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	var prefs domain.Preferences
	if req.Preferences != nil {
		prefs = *req.Preferences
	}

	recipes, err := h.svc.GenerateRecipes(r.Context(), user, req.Ingredients, prefs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recipesResponse{Recipes: recipes})
}

func (h *handler) handleAdapt(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req adaptRequest
	if !decodeBody(w, r, &req) {
		return
	}

	recipe, err := h.svc.AdaptRecipe(r.Context(), user, req.Recipe, req.Instruction)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

func (h *handler) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	favs, err := h.svc.Favorites(r.Context(), user)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"favorites": favs})
}

func (h *handler) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req favoriteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	fav, err := h.svc.AddFavorite(r.Context(), user, req.Recipe)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, fav)
}

func (h *handler) handleDeleteFavorite(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.svc.RemoveFavorite(r.Context(), user, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid_request", "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	entries, err := h.svc.History(r.Context(), user, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": entries})
}

func (h *handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	p, err := h.svc.Profile(r.Context(), user)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req profileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := h.svc.SaveProfile(r.Context(), &domain.Profile{
		UserID:      user,
		DisplayName: strings.TrimSpace(req.DisplayName),
		Preferences: req.Preferences,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) handleStreak(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	s, err := h.svc.Streak(r.Context(), user)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, streakResponse{
		Streak:      s,
		ActiveToday: h.svc.ActiveToday(s),
	})
}
