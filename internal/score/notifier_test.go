package score

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNotifyCheckPostsToAchievementService(t *testing.T) {
	var gotPath atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		gotPath.Store(r.URL.Path)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	n := NewAchievementNotifier(srv.URL, 2*time.Second, testLogger())
	n.NotifyCheck(42)

	assert.Equal(t, "/api/achievements/check/42", gotPath.Load())
}

func TestNotifyCheckSwallowsFailures(t *testing.T) {
	// nothing listens on this port; the call must not panic or block
	n := NewAchievementNotifier("http://localhost:1", 100*time.Millisecond, testLogger())
	n.NotifyCheck(1)
}

func TestNotifyCheckSwallowsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewAchievementNotifier(srv.URL, 2*time.Second, testLogger())
	n.NotifyCheck(1)
}
