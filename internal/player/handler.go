package player

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/leaderboard-platform/internal/domain"
	"github.com/leaderboard-platform/internal/handler"
)

// Handler exposes the player service over HTTP
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler creates a new player handler
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Router builds the player service router
func (h *Handler) Router() chi.Router {
	r := handler.NewRouter("player-service")

	r.Route("/api/players", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/username/{username}", h.getByUsername)
		r.Route("/{playerID}", func(r chi.Router) {
			r.Get("/", h.get)
			r.Put("/", h.update)
			r.Delete("/", h.delete)
		})
	})

	return r
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req domain.PlayerCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.service.Create(r.Context(), req)
	if err != nil {
		handler.WriteError(w, handler.ErrorStatus(err), err.Error())
		return
	}
	handler.WriteSuccess(w, http.StatusCreated, p)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	players, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		handler.WriteError(w, handler.ErrorStatus(err), err.Error())
		return
	}
	handler.WriteSuccess(w, http.StatusOK, players)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		handler.WriteError(w, handler.ErrorStatus(err), err.Error())
		return
	}
	handler.WriteSuccess(w, http.StatusOK, p)
}

func (h *Handler) getByUsername(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		handler.WriteError(w, handler.ErrorStatus(err), err.Error())
		return
	}
	handler.WriteSuccess(w, http.StatusOK, p)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	var update domain.PlayerUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		handler.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.service.Update(r.Context(), id, update)
	if err != nil {
		handler.WriteError(w, handler.ErrorStatus(err), err.Error())
		return
	}
	handler.WriteSuccess(w, http.StatusOK, p)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		handler.WriteError(w, handler.ErrorStatus(err), err.Error())
		return
	}
	handler.WriteSuccess(w, http.StatusOK, map[string]string{"status": "deleted"})
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

func urlID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "playerID"), 10, 64)
	if err != nil || id <= 0 {
		handler.WriteError(w, http.StatusBadRequest, "invalid playerID")
		return 0, false
	}
	return id, true
}
