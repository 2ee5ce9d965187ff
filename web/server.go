package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"markestedt/langra/config"
	"markestedt/langra/events"
	"markestedt/langra/storage"
)

//go:embed static/*
var staticFiles embed.FS

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     isSameOrigin,
}

// AgentStatus is the agent state reported by /api/status
type AgentStatus struct {
	Status           string `json:"status"`
	Mode             string `json:"mode"`
	Provider         string `json:"provider"`
	Listening        bool   `json:"listening"`
	PermissionDenied bool   `json:"permissionDenied"`
	HasCredentials   bool   `json:"hasCredentials"`
}

// Controller is the command surface the web UI drives
type Controller interface {
	TriggerCapture() error
	InsertResult(ctx context.Context, text string) error
	SetMode(mode string) error
	Mode() string
	Retranslate(ctx context.Context, text, sourceLang string) (string, error)
	Correct(ctx context.Context, text, language string) (string, error)
	CorrectWithInstruction(ctx context.Context, text, language, instruction string) (string, error)
	CopyToClipboard(text string) error
	Status() AgentStatus
}

// CredentialStore stores provider API keys
type CredentialStore interface {
	SetAPIKey(provider, key string) error
	HasCredentials(t config.TranslationConfig) bool
}

// Server represents the web server
type Server struct {
	db     *storage.DB
	config *config.Config
	creds  CredentialStore
	ctrl   Controller
	port   int
	hub    *Hub
	mu     sync.RWMutex
}

// NewServer creates a new web server
func NewServer(db *storage.DB, cfg *config.Config, creds CredentialStore, ctrl Controller, port int) *Server {
	hub := NewHub()
	go hub.Run()

	return &Server{
		db:     db,
		config: cfg,
		creds:  creds,
		ctrl:   ctrl,
		port:   port,
		hub:    hub,
	}
}

// Handler returns the HTTP handler with every route registered
func (s *Server) Handler() (http.Handler, error) {
	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/history/", s.handleHistory)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/mode", s.handleMode)
	mux.HandleFunc("/api/capture", s.handleCapture)
	mux.HandleFunc("/api/insert", s.handleInsert)
	mux.HandleFunc("/api/retranslate", s.handleRetranslate)
	mux.HandleFunc("/api/correct", s.handleCorrect)
	mux.HandleFunc("/api/clipboard", s.handleClipboard)
	mux.HandleFunc("/ws", s.handleWebSocket)

	// Static files
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to load static files: %w", err)
	}
	mux.Handle("/", http.FileServer(http.FS(staticFS)))

	return mux, nil
}

// Start serves until ctx is done. Only the loopback interface is bound.
func (s *Server) Start(ctx context.Context) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", s.port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
		s.hub.Stop()
	}()

	slog.Info("Starting web server", "port", s.port, "url", s.URL())

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// URL returns the address of the web UI
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.port)
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

// Emit forwards a pipeline event to every connected client
func (s *Server) Emit(ev events.Event) {
	s.hub.BroadcastMessage(Message{
		Type: MessageType(ev.Name),
		Data: ev.Payload,
	})
}

// BroadcastStatus broadcasts a status update to all connected clients
func (s *Server) BroadcastStatus(status string) {
	s.hub.BroadcastMessage(Message{
		Type: MessageTypeStatus,
		Data: StatusMessage{Status: status},
	})
}

// BroadcastCycle broadcasts a stored cycle to all connected clients
func (s *Server) BroadcastCycle(c *storage.Cycle) {
	s.hub.BroadcastMessage(Message{
		Type: MessageTypeCycle,
		Data: CycleMessage{
			ID:        c.ID,
			CycleID:   c.CycleID,
			Mode:      c.Mode,
			Success:   c.Success,
			Timestamp: c.Timestamp.Format(time.RFC3339),
		},
	})
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
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
	case client.hub.register <- client:
	case <-client.hub.done:
		conn.Close()
		return
	}

	// Start client goroutines
	go client.writePump()
	go client.readPump()
}

// isSameOrigin rejects cross-site pages talking to the local agent
func isSameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	return originURL.Host == r.Host
}
