package score

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/leaderboard-platform/internal/domain"
	"github.com/leaderboard-platform/internal/handler"
)

// Handler exposes the score service over HTTP
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler creates a new score handler
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Router builds the score service router
func (h *Handler) Router() chi.Router {
	r := handler.NewRouter("score-service")

	r.Route("/api/scores", func(r chi.Router) {
		r.Post("/", h.submit)
		r.Get("/", h.list)
		r.Get("/player/{playerID}", h.playerScores)
		r.Get("/player/{playerID}/best", h.playerBest)
		r.Get("/gamemode/{gameMode}", h.byGameMode)
	})

	return r
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var sub domain.ScoreSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		handler.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if sub.PlayerID <= 0 {
		handler.WriteError(w, http.StatusBadRequest, "player_id is required")
		return
	}

	record, err := h.service.Submit(r.Context(), sub)
	if err != nil {
		handler.WriteError(w, handler.ErrorStatus(err), err.Error())
		return
	}

	h.logger.Info("score accepted",
		"player_id", record.PlayerID,
		"game_mode", record.GameMode,
		"score", record.Score)
	handler.WriteSuccess(w, http.StatusCreated, record)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	scores, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		handler.WriteError(w, handler.ErrorStatus(err), err.Error())
		return
	}
	handler.WriteSuccess(w, http.StatusOK, scores)
}

func (h *Handler) playerScores(w http.ResponseWriter, r *http.Request) {
	playerID, ok := urlID(w, r, "playerID")
	if !ok {
		return
	}

	scores, err := h.service.PlayerScores(r.Context(), playerID)
	if err != nil {
		handler.WriteError(w, handler.ErrorStatus(err), err.Error())
		return
	}
	handler.WriteSuccess(w, http.StatusOK, scores)
}

func (h *Handler) playerBest(w http.ResponseWriter, r *http.Request) {
	playerID, ok := urlID(w, r, "playerID")
	if !ok {
		return
	}

	best, err := h.service.Best(r.Context(), playerID, r.URL.Query().Get("game_mode"))
	if err != nil {
		handler.WriteError(w, handler.ErrorStatus(err), err.Error())
		return
	}
	handler.WriteSuccess(w, http.StatusOK, best)
}

func (h *Handler) byGameMode(w http.ResponseWriter, r *http.Request) {
	scores, err := h.service.ByGameMode(r.Context(), chi.URLParam(r, "gameMode"))
	if err != nil {
		handler.WriteError(w, handler.ErrorStatus(err), err.Error())
		return
	}
	handler.WriteSuccess(w, http.StatusOK, scores)
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func urlID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		handler.WriteError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}
