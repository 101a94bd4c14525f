package leaderboard

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/leaderboard-platform/internal/domain"
	"github.com/leaderboard-platform/internal/handler"
)

// Handler provides the leaderboard service's HTTP surface
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Router creates and configures the HTTP router
func (h *Handler) Router() http.Handler {
	r := handler.NewRouter("leaderboard-service")

	r.Route("/api/leaderboard", func(r chi.Router) {
		r.Get("/global", h.GetGlobal)
		r.Get("/gamemode/{gameMode}", h.GetByGameMode)
		r.Get("/recent", h.GetRecent)
		r.Get("/player/{playerID}/rank", h.GetPlayerRank)
		r.Get("/player/{playerID}/stats", h.GetPlayerStats)
	})

	return r
}

func queryInt(r *http.Request, name string, fallback int) int {
	if raw := r.URL.Query().Get(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}

func urlID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

// GetGlobal returns the ranked leaderboard, optionally scoped to a game mode
func (h *Handler) GetGlobal(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 0)
	offset := queryInt(r, "offset", 0)
	gameMode := r.URL.Query().Get("game_mode")

	entries, err := h.service.Global(r.Context(), limit, offset, gameMode)
	if err != nil {
		h.logger.Error("failed to get leaderboard", "error", err)
		handler.WriteError(w, http.StatusInternalServerError, domain.ErrInternalError.Error())
		return
	}
	handler.WriteSuccess(w, http.StatusOK, entries)
}

// GetByGameMode returns the ranked leaderboard for one game mode
func (h *Handler) GetByGameMode(w http.ResponseWriter, r *http.Request) {
	gameMode := chi.URLParam(r, "gameMode")
	limit := queryInt(r, "limit", 0)

	entries, err := h.service.Global(r.Context(), limit, 0, gameMode)
	if err != nil {
		h.logger.Error("failed to get leaderboard", "game_mode", gameMode, "error", err)
		handler.WriteError(w, http.StatusInternalServerError, domain.ErrInternalError.Error())
		return
	}
	handler.WriteSuccess(w, http.StatusOK, entries)
}

// GetRecent returns the most recently submitted scores
func (h *Handler) GetRecent(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 0)

	scores, err := h.service.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to get recent scores", "error", err)
		handler.WriteError(w, http.StatusInternalServerError, domain.ErrInternalError.Error())
		return
	}
	handler.WriteSuccess(w, http.StatusOK, scores)
}

// GetPlayerRank returns a player's rank, or an unranked result
func (h *Handler) GetPlayerRank(w http.ResponseWriter, r *http.Request) {
	playerID, ok := urlID(r, "playerID")
	if !ok {
		handler.WriteError(w, http.StatusBadRequest, "invalid playerID")
		return
	}

	rank, err := h.service.PlayerRank(r.Context(), playerID, r.URL.Query().Get("game_mode"))
	if err != nil {
		h.logger.Error("failed to get player rank", "player_id", playerID, "error", err)
		handler.WriteError(w, http.StatusInternalServerError, domain.ErrInternalError.Error())
		return
	}
	handler.WriteSuccess(w, http.StatusOK, rank)
}

// GetPlayerStats returns a player's aggregate stats
func (h *Handler) GetPlayerStats(w http.ResponseWriter, r *http.Request) {
	playerID, ok := urlID(r, "playerID")
	if !ok {
		handler.WriteError(w, http.StatusBadRequest, "invalid playerID")
		return
	}

	stats, err := h.service.Stats(r.Context(), playerID)
	if err != nil {
		h.logger.Error("failed to get player stats", "player_id", playerID, "error", err)
		handler.WriteError(w, http.StatusInternalServerError, domain.ErrInternalError.Error())
		return
	}
	handler.WriteSuccess(w, http.StatusOK, stats)
}
