// Package server exposes the scanner over a local HTTP surface: trigger a
// background scan, read status, remove findings, and stream scan progress
// over a websocket.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/credsweep/credsweep/pkg/cache"
	"github.com/credsweep/credsweep/pkg/logging"
	"github.com/credsweep/credsweep/pkg/output/formatter"
	"github.com/credsweep/credsweep/pkg/scanner"
)

// ProgressEvent is one per-file progress update streamed to websocket
// subscribers while a scan runs.
type ProgressEvent struct {
	EncodedProjectDir string    `json:"encodedProjectDir"`
	SessionID         string    `json:"sessionId"`
	Time              time.Time `json:"time"`
}

// Server serves the local scan API.
type Server struct {
	orch  *scanner.Orchestrator
	store *cache.Store
	addr  string

	upgrader websocket.Upgrader

	mu          sync.Mutex
	subscribers map[*websocket.Conn]bool
}

// New builds a server bound to addr. The orchestrator's progress hook is
// wired to the websocket broadcast.
func New(orch *scanner.Orchestrator, store *cache.Store, addr string) *Server {
	s := &Server{
		orch:  orch,
		store: store,
		addr:  addr,
		upgrader: websocket.Upgrader{
			// Local-only API; the UI connects from file:// or localhost.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		subscribers: make(map[*websocket.Conn]bool),
	}
	orch.Progress = func(encodedDir, sessionID string) {
		s.broadcast(ProgressEvent{
			EncodedProjectDir: encodedDir,
			SessionID:         sessionID,
			Time:              time.Now(),
		})
	}
	return s
}

// Run serves until the listener fails.
func (s *Server) Run() error {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/scan", s.handleScan)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("POST /api/tokens/remove", s.handleRemove)
	mux.HandleFunc("GET /api/scan/progress", s.handleProgress)

	logging.Logger.Infow("serving scan API", "addr", s.addr)
	return http.ListenAndServe(s.addr, mux)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	c := s.store.Load()
	if c.ScanStatus == cache.StatusRunning {
		// Control-flow guard, not a failure: the running scan wins.
		writeJSON(w, http.StatusConflict, map[string]any{
			"started": false,
			"reason":  "scan already running",
		})
		return
	}

	go func() {
		if err := s.orch.RunBackgroundScan(context.Background()); err != nil {
			logging.Logger.Errorw("background scan failed", "error", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]any{"started": true})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	report := formatter.BuildReport(s.store.Load())
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "missing match id"})
		return
	}

	if err := s.orch.RemoveMatch(req.ID); err != nil {
		status := http.StatusInternalServerError
		if err == scanner.ErrMatchNotFound {
			status = http.StatusNotFound
		}
		writeJSON(w, status, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"removed": true})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.subscribers[conn] = true
	s.mu.Unlock()

	// Read loop only to observe the close; progress flows one way.
	go func() {
		defer s.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) broadcast(event ProgressEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.subscribers {
		if err := conn.WriteJSON(event); err != nil {
			conn.Close()
			delete(s.subscribers, conn)
		}
	}
}

func (s *Server) drop(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conn.Close()
	delete(s.subscribers, conn)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Logger.Debugw("failed to write response", "error", err)
	}
}
