// Package websocket pushes accepted scores to connected clients. Clients
// subscribe to game modes; the GLOBAL mode receives every accepted score.
package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/leaderboard-platform/internal/domain"
)

// Message types
const (
	MessageTypeScoreAccepted = "score_accepted"
	MessageTypeSubscribe     = "subscribe"
	MessageTypeUnsubscribe   = "unsubscribe"
	MessageTypePing          = "ping"
	MessageTypePong          = "pong"
	MessageTypeError         = "error"
)

// Message represents a WebSocket message
type Message struct {
	Type      string      `json:"type"`
	GameMode  string      `json:"game_mode,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Hub maintains the set of active clients and broadcasts accepted scores
type Hub struct {
	// Subscribed clients by game mode
	clients map[string]map[*Client]bool

	// All connected clients
	allClients map[*Client]bool

	register    chan *Client
	unregister  chan *Client
	broadcast   chan *Message
	subscribe   chan *subscriptionRequest
	unsubscribe chan *subscriptionRequest

	mu sync.RWMutex

	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

type subscriptionRequest struct {
	client   *Client
	gameMode string
}

// NewHub creates a new Hub
func NewHub(logger *slog.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:     make(map[string]map[*Client]bool),
		allClients:  make(map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan *Message, 256),
		subscribe:   make(chan *subscriptionRequest, 64),
		unsubscribe: make(chan *subscriptionRequest, 64),
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	h.logger.Info("websocket hub started")
	for {
		select {
		case <-h.ctx.Done():
			h.logger.Info("websocket hub stopping")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.allClients[client] = true
			h.mu.Unlock()
			h.logger.Debug("client registered", "client_id", client.id)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.allClients[client]; ok {
				delete(h.allClients, client)
				for mode, clients := range h.clients {
					if _, ok := clients[client]; ok {
						delete(clients, client)
						if len(clients) == 0 {
							delete(h.clients, mode)
						}
					}
				}
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Debug("client unregistered", "client_id", client.id)

		case req := <-h.subscribe:
			h.mu.Lock()
			if _, ok := h.clients[req.gameMode]; !ok {
				h.clients[req.gameMode] = make(map[*Client]bool)
			}
			h.clients[req.gameMode][req.client] = true
			h.mu.Unlock()
			h.logger.Debug("client subscribed", "client_id", req.client.id, "game_mode", req.gameMode)

		case req := <-h.unsubscribe:
			h.mu.Lock()
			if clients, ok := h.clients[req.gameMode]; ok {
				delete(clients, req.client)
				if len(clients) == 0 {
					delete(h.clients, req.gameMode)
				}
			}
			h.mu.Unlock()
			h.logger.Debug("client unsubscribed", "client_id", req.client.id, "game_mode", req.gameMode)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// Stop stops the hub
func (h *Hub) Stop() {
	h.cancel()
}

func (h *Hub) broadcastMessage(message *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal message", "error", err)
		return
	}

	targets := make(map[*Client]bool)
	if message.GameMode != "" {
		for client := range h.clients[message.GameMode] {
			targets[client] = true
		}
		// GLOBAL subscribers see every mode
		for client := range h.clients[domain.GameModeGlobal] {
			targets[client] = true
		}
	} else {
		for client := range h.allClients {
			targets[client] = true
		}
	}

	for client := range targets {
		select {
		case client.send <- data:
		default:
			h.logger.Warn("client buffer full, skipping", "client_id", client.id)
		}
	}
}

// BroadcastScore pushes an accepted score to subscribers of its game mode
func (h *Hub) BroadcastScore(score domain.Score) {
	message := &Message{
		Type:      MessageTypeScoreAccepted,
		GameMode:  score.GameMode,
		Data:      score,
		Timestamp: time.Now(),
	}

	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn("broadcast channel full, dropping message")
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Subscribe adds a client to a game mode subscription
func (h *Hub) Subscribe(client *Client, gameMode string) {
	h.subscribe <- &subscriptionRequest{client: client, gameMode: gameMode}
}

// Unsubscribe removes a client from a game mode subscription
func (h *Hub) Unsubscribe(client *Client, gameMode string) {
	h.unsubscribe <- &subscriptionRequest{client: client, gameMode: gameMode}
}

// SubscriberCount returns the number of subscribers for a game mode
func (h *Hub) SubscriberCount(gameMode string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[gameMode])
}

// TotalConnections returns the total number of connected clients
func (h *Hub) TotalConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.allClients)
}
