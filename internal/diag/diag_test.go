package diag

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/go-theft-craft/worldgen/internal/voxel"
	"github.com/go-theft-craft/worldgen/internal/world"
)

type staticStats world.Stats

func (s staticStats) Stats() world.Stats { return world.Stats(s) }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	src := staticStats{Tick: 12, Loaded: 9, Handles: 9, PlayerChunk: voxel.ChunkKey{X: 32}}
	s := New(src, "session-1", 10*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestStatsStream(t *testing.T) {
	srv := newTestServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stats"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	for i := 0; i < 2; i++ {
		var f Frame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("ReadJSON: %v", err)
		}
		if f.Session != "session-1" {
			t.Errorf("Session = %q, want session-1", f.Session)
		}
		if f.Stats.Tick != 12 || f.Stats.Loaded != 9 || f.Stats.PlayerChunk.X != 32 {
			t.Errorf("unexpected stats %+v", f.Stats)
		}
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
