package score

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// AchievementNotifier triggers achievement re-evaluation over HTTP.
// Failures are logged and swallowed; score acceptance never depends on
// the achievement service being reachable.
type AchievementNotifier struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// NewAchievementNotifier creates a notifier pointed at the achievement service
func NewAchievementNotifier(baseURL string, timeout time.Duration, logger *slog.Logger) *AchievementNotifier {
	return &AchievementNotifier{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		logger:  logger,
	}
}

// NotifyCheck posts a check request for the player and discards the outcome
func (n *AchievementNotifier) NotifyCheck(playerID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/api/achievements/check/%d", n.baseURL, playerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		n.logger.Warn("building achievement check request", "player_id", playerID, "error", err)
		return
	}

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Warn("achievement check notification failed", "player_id", playerID, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		n.logger.Warn("achievement check rejected", "player_id", playerID, "status", resp.StatusCode)
	}
}
