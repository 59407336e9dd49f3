package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"markestedt/reloadbridge/config"
	"markestedt/reloadbridge/reload"
	"markestedt/reloadbridge/storage"
)

// Commander runs commands against the game window. The agent implements it.
type Commander interface {
	ReloadFrom(source, version string) reload.Result
	Chat(text string, restoreFocusElsewhere bool, source string) reload.Result
	SetTarget(target config.TargetConfig)
	Busy() bool
}

// Server is the loopback HTTP bridge.
type Server struct {
	db        *storage.DB
	commander Commander
	port      int
	hub       *Hub
	upgrader  websocket.Upgrader

	mu     sync.RWMutex
	config *config.Config
	last   *ReloadMessage
}

// NewServer creates a new web server. db may be nil when history is disabled.
func NewServer(db *storage.DB, cfg *config.Config, commander Commander, port int) *Server {
	s := &Server{
		db:        db,
		config:    cfg,
		commander: commander,
		port:      port,
		hub:       NewHub(),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return s.originAllowed(r.Header.Get("Origin"))
		},
	}
	return s
}

// Handler returns the routed API with origin checks applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/reload", s.handleReload)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /api/config", s.handleGetConfig)
	mux.HandleFunc("PUT /api/config", s.handlePutConfig)
	mux.HandleFunc("GET /api/history", s.handleGetHistory)
	mux.HandleFunc("DELETE /api/history/{id}", s.handleDeleteHistory)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	return s.withCORS(mux)
}

// Start serves on 127.0.0.1 until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort("127.0.0.1", fmt.Sprint(s.port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go s.hub.Run(ctx)

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Web server shutdown error", "error", err)
		}
	}()

	slog.Info("Starting web server", "addr", ln.Addr().String())

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web server: %w", err)
	}
	return nil
}

// GetConfig returns the current configuration (thread-safe)
func (s *Server) GetConfig() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// UpdateConfig updates the configuration (thread-safe)
func (s *Server) UpdateConfig(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = cfg
}

// BroadcastStatus broadcasts a status update to all connected clients
func (s *Server) BroadcastStatus(status string) {
	s.hub.BroadcastMessage(Message{
		Type: MessageTypeStatus,
		Data: StatusMessage{Status: status},
	})
}

// BroadcastResult remembers res as the latest outcome and pushes it to all
// connected clients. id is the history row, or 0 when history is disabled.
func (s *Server) BroadcastResult(id int64, res reload.Result) {
	msg := newReloadMessage(id, res)

	s.mu.Lock()
	s.last = &msg
	s.mu.Unlock()

	s.hub.BroadcastMessage(Message{Type: MessageTypeReload, Data: msg})
}

func newReloadMessage(id int64, res reload.Result) ReloadMessage {
	msg := ReloadMessage{
		ID:        id,
		Status:    res.Status.String(),
		Source:    res.Source,
		Command:   res.Command,
		Events:    res.Events,
		LatencyMs: res.Duration.Milliseconds(),
		Timestamp: res.Started.UTC().Format(time.RFC3339),
	}
	if res.Err != nil {
		msg.Error = res.Err.Error()
	}
	return msg
}

func (s *Server) originAllowed(origin string) bool {
	if origin == "" {
		return true
	}
	return slices.Contains(s.GetConfig().Web.AllowedOrigins, origin)
}

// withCORS rejects browser requests from origins outside web.allowed_origins
// and answers preflight requests for the allowed ones. Requests without an
// Origin header (CLI, scripts) pass through.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if !s.originAllowed(origin) {
			slog.Warn("Rejected request from disallowed origin", "origin", origin, "path", r.URL.Path)
			http.Error(w, "Origin not allowed", http.StatusForbidden)
			return
		}

		if origin != "" {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
			h.Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade WebSocket connection", "error", err)
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	select {
	case s.hub.register <- client:
	case <-s.hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
