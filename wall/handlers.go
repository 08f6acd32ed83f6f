package wall

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"graffiti/models"
	"graffiti/utils"
)

// Handlers exposes the wall service over HTTP. Store failures surface as 500
// responses with an error body, never as seemingly-valid empty results. The
// one exception is the binary endpoint, which answers a missing image with
// an empty 200 so <img> tags on the client degrade quietly.
type Handlers struct {
	svc    *Service
	logger *zap.Logger
}

func NewHandlers(svc *Service, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{svc: svc, logger: logger}
}

// ListPhotos handles GET /api/photos
func (h *Handlers) ListPhotos(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	photos, err := h.svc.ListPhotos(ctx)
	if err != nil {
		h.logger.Error("list photos", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to load photos")
		return
	}
	if photos == nil {
		photos = []models.Photo{}
	}
	utils.RespondWithJSON(w, http.StatusOK, photos)
}

// PhotoImage handles GET /api/photo/:id
func (h *Handlers) PhotoImage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	data, err := h.svc.PhotoImage(ctx, ps.ByName("id"))
	if errors.Is(err, ErrNotFound) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.WriteHeader(http.StatusOK)
		return
	}
	if err != nil {
		h.logger.Error("photo image", zap.String("photo_id", ps.ByName("id")), zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to load image")
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// GetStats handles GET /api/stats
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	stats, err := h.svc.Stats(ctx)
	if err != nil {
		h.logger.Error("stats", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, stats)
}

// TopUsers handles GET /api/top_users
func (h *Handlers) TopUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	users, err := h.svc.TopUsers(ctx, limit)
	if err != nil {
		h.logger.Error("top users", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, users)
}

// ToggleLike handles POST /api/like
func (h *Handlers) ToggleLike(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var req struct {
		PhotoID  string `json:"photo_id"`
		UserID   int64  `json:"user_id"`
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"success": false, "error": "invalid request body"})
		return
	}
	if req.PhotoID == "" || req.UserID == 0 {
		utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"success": false, "error": "photo_id and user_id are required"})
		return
	}

	likes, liked, err := h.svc.ToggleLike(ctx, req.PhotoID, req.UserID)
	if errors.Is(err, ErrNotFound) {
		utils.RespondWithJSON(w, http.StatusNotFound, utils.M{"success": false, "error": "photo not found"})
		return
	}
	if err != nil {
		h.logger.Error("toggle like", zap.String("photo_id", req.PhotoID), zap.Error(err))
		utils.RespondWithJSON(w, http.StatusInternalServerError, utils.M{"success": false, "error": "failed to toggle like"})
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success":   true,
		"new_likes": likes,
		"liked":     liked,
	})
}

// DeletePhoto handles POST /api/delete_photo
func (h *Handlers) DeletePhoto(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var req struct {
		PhotoID string `json:"photo_id"`
		UserID  int64  `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"success": false, "error": "invalid request body"})
		return
	}
	if req.PhotoID == "" || req.UserID == 0 {
		utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"success": false, "error": "photo_id and user_id are required"})
		return
	}

	err := h.svc.DeletePhoto(ctx, req.PhotoID, req.UserID)
	switch {
	case errors.Is(err, ErrAccessDenied):
		utils.RespondWithJSON(w, http.StatusForbidden, utils.M{"success": false, "error": "admin access required"})
	case errors.Is(err, ErrNotFound):
		utils.RespondWithJSON(w, http.StatusNotFound, utils.M{"success": false, "error": "photo not found"})
	case err != nil:
		h.logger.Error("delete photo", zap.String("photo_id", req.PhotoID), zap.Error(err))
		utils.RespondWithJSON(w, http.StatusInternalServerError, utils.M{"success": false, "error": "failed to delete photo"})
	default:
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
	}
}

// IsAdmin handles GET /api/is_admin/:user_id
func (h *Handlers) IsAdmin(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, err := strconv.ParseInt(ps.ByName("user_id"), 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"is_admin": h.svc.IsAdmin(userID)})
}
