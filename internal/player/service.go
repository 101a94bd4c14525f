// Package player implements player registration and profile management.
package player

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leaderboard-platform/internal/domain"
)

// Store is the persistence behind the player service
type Store interface {
	CreatePlayer(ctx context.Context, p *domain.Player) error
	GetPlayer(ctx context.Context, id int64) (*domain.Player, error)
	GetPlayerByUsername(ctx context.Context, username string) (*domain.Player, error)
	ListPlayers(ctx context.Context, limit, offset int) ([]domain.Player, error)
	UpdatePlayer(ctx context.Context, id int64, update domain.PlayerUpdate) (*domain.Player, error)
	DeletePlayer(ctx context.Context, id int64) error
}

// Service provides player CRUD on top of the store
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates a new player service
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Create registers a new player
func (s *Service) Create(ctx context.Context, req domain.PlayerCreate) (*domain.Player, error) {
	if req.Username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrInvalidRequest)
	}
	if req.Email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrInvalidRequest)
	}

	p := &domain.Player{
		Username:    req.Username,
		Email:       req.Email,
		DisplayName: req.DisplayName,
	}
	if err := s.store.CreatePlayer(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("player registered", "player_id", p.ID, "username", p.Username)
	return p, nil
}

// Get retrieves a player by ID
func (s *Service) Get(ctx context.Context, id int64) (*domain.Player, error) {
	return s.store.GetPlayer(ctx, id)
}

// GetByUsername retrieves a player by username
func (s *Service) GetByUsername(ctx context.Context, username string) (*domain.Player, error) {
	return s.store.GetPlayerByUsername(ctx, username)
}

// List retrieves players with pagination
func (s *Service) List(ctx context.Context, limit, offset int) ([]domain.Player, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListPlayers(ctx, limit, offset)
}

// Update applies a partial update to a player's profile
func (s *Service) Update(ctx context.Context, id int64, update domain.PlayerUpdate) (*domain.Player, error) {
	if update.Email == nil && update.DisplayName == nil {
		return nil, fmt.Errorf("%w: no fields to update", domain.ErrInvalidRequest)
	}
	return s.store.UpdatePlayer(ctx, id, update)
}

// Delete removes a player and, via cascade, its scores and achievements
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeletePlayer(ctx, id); err != nil {
		return err
	}
	s.logger.Info("player deleted", "player_id", id)
	return nil
}
