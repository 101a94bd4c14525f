package achievement

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/leaderboard-platform/internal/handler"
)

// Handler exposes the achievement service over HTTP
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler creates a new achievement handler
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Router builds the achievement service router
func (h *Handler) Router() chi.Router {
	r := handler.NewRouter("achievement-service")

	r.Route("/api/achievements", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/leaderboard", h.leaderboard)
		r.Get("/player/{playerID}", h.playerAchievements)
		r.Post("/check/{playerID}", h.check)
	})

	return r
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	achievements, err := h.service.List(r.Context())
	if err != nil {
		handler.WriteError(w, handler.ErrorStatus(err), err.Error())
		return
	}
	handler.WriteSuccess(w, http.StatusOK, achievements)
}

func (h *Handler) leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}

	ranks, err := h.service.Leaderboard(r.Context(), limit)
	if err != nil {
		handler.WriteError(w, handler.ErrorStatus(err), err.Error())
		return
	}
	handler.WriteSuccess(w, http.StatusOK, ranks)
}

func (h *Handler) playerAchievements(w http.ResponseWriter, r *http.Request) {
	playerID, err := strconv.ParseInt(chi.URLParam(r, "playerID"), 10, 64)
	if err != nil || playerID <= 0 {
		handler.WriteError(w, http.StatusBadRequest, "invalid playerID")
		return
	}

	unlocked, err := h.service.PlayerAchievements(r.Context(), playerID)
	if err != nil {
		handler.WriteError(w, handler.ErrorStatus(err), err.Error())
		return
	}
	handler.WriteSuccess(w, http.StatusOK, unlocked)
}

// check accepts the request and runs the evaluation in the background.
// The caller gets a 202 regardless of the outcome; newly met criteria
// surface on the next read of the player's achievements.
func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	playerID, err := strconv.ParseInt(chi.URLParam(r, "playerID"), 10, 64)
	if err != nil || playerID <= 0 {
		handler.WriteError(w, http.StatusBadRequest, "invalid playerID")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := h.service.Check(ctx, playerID); err != nil {
			h.logger.Warn("achievement check failed", "player_id", playerID, "error", err)
		}
	}()

	handler.WriteSuccess(w, http.StatusAccepted, map[string]string{"status": "check scheduled"})
}
