// Package diag streams world statistics to websocket clients.
package diag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/go-theft-craft/worldgen/internal/world"
)

// StatsSource provides the latest world statistics.
type StatsSource interface {
	Stats() world.Stats
}

// Frame is one message of the stats stream.
type Frame struct {
	Session string      `json:"session"`
	Time    time.Time   `json:"time"`
	Stats   world.Stats `json:"stats"`
}

// Server serves /stats as a websocket stream of Frames and /healthz.
type Server struct {
	src      StatsSource
	session  string
	interval time.Duration
	log      *slog.Logger
	upgrader websocket.Upgrader
}

// New creates a Server that sends a frame every interval.
func New(src StatsSource, session string, interval time.Duration, log *slog.Logger) *Server {
	return &Server{
		src:      src,
		session:  session,
		interval: interval,
		log:      log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// Start listens on addr and blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	lc := net.ListenConfig{}
	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("diagnostics listening", "addr", listener.Addr().String())
	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve diagnostics: %w", err)
	}
	return nil
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// The client never sends data; reading only detects the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					s.log.Debug("stats client error", "error", err)
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		frame := Frame{Session: s.session, Time: time.Now(), Stats: s.src.Stats()}
		if err := conn.WriteJSON(frame); err != nil {
			s.log.Debug("stats write failed", "error", err)
			return
		}
		select {
		case <-ticker.C:
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}
