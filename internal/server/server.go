// Package server serves house sessions over WebSocket and, optionally, plain
// TCP. Every connection gets its own generated house.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lawnchairsociety/eldritchhouse/internal/catalog"
	"github.com/lawnchairsociety/eldritchhouse/internal/config"
	"github.com/lawnchairsociety/eldritchhouse/internal/history"
	"github.com/lawnchairsociety/eldritchhouse/internal/logger"
)

// Server accepts sessions over WebSocket and telnet, one house per session.
type Server struct {
	cfg          *config.HouseConfig
	catalog      catalog.Catalog
	store        history.Store
	connLimiter  *ConnLimiter
	sessions     map[uint64]*Session
	nextID       uint64
	mu           sync.RWMutex
	httpServer   *http.Server
	listener     net.Listener
	shutdown     chan struct{}
	shutdownOnce sync.Once
	wg           sync.WaitGroup
	StartTime    time.Time
}

// NewServer creates a server drawing rooms from cat.
func NewServer(cfg *config.HouseConfig, cat catalog.Catalog) *Server {
	return &Server{
		cfg:         cfg,
		catalog:     cat,
		connLimiter: NewConnLimiter(cfg.Server.Connections),
		sessions:    make(map[uint64]*Session),
		shutdown:    make(chan struct{}),
		StartTime:   time.Now(),
	}
}

// SetHistory makes sessions record their generation runs in store.
func (s *Server) SetHistory(store history.Store) {
	s.store = store
}

// SessionCount returns the number of connected sessions.
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// GetUptime returns how long the server has been running.
func (s *Server) GetUptime() time.Duration {
	return time.Since(s.StartTime)
}

// Handler returns the HTTP routes: /ws for sessions and /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocketUpgrade)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start serves HTTP on the configured address, plus telnet when configured.
// It blocks until Shutdown.
func (s *Server) Start() error {
	if addr := s.cfg.Server.TelnetAddr; addr != "" {
		if err := s.StartTelnet(addr); err != nil {
			return err
		}
	}

	httpServer := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	select {
	case <-s.shutdown:
		s.mu.Unlock()
		return nil
	default:
	}
	s.httpServer = httpServer
	s.mu.Unlock()

	logger.Always("WebSocket server listening", "address", s.cfg.Server.Addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// StartTelnet listens for plain TCP sessions in the background.
func (s *Server) StartTelnet(address string) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to start telnet listener: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	logger.Always("Telnet server listening", "address", listener.Addr().String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-s.shutdown:
					return
				default:
				}
				if errors.Is(err, net.ErrClosed) {
					return
				}
				logger.Error("Error accepting connection", "error", err)
				continue
			}
			go s.handleConnection(conn)
		}
	}()
	return nil
}

// TelnetAddr returns the bound telnet address, or "" when not listening.
func (s *Server) TelnetAddr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) handleConnection(conn net.Conn) {
	remoteAddr := conn.RemoteAddr().String()
	ip := extractIP(remoteAddr)

	release, ok := s.connLimiter.Acquire(ip)
	if !ok {
		logger.Warning("Connection rejected - limit exceeded",
			"remote_addr", remoteAddr,
			"ip", ip)
		conn.Write([]byte(`{"type":"error","error":"too many connections"}` + "\n"))
		conn.Close()
		return
	}
	defer release()

	client := NewTelnetClient(conn, int(s.cfg.Server.MaxMessageSize))
	s.serveClient(client)
}

// handleWebSocketUpgrade upgrades an HTTP connection to WebSocket.
func (s *Server) handleWebSocketUpgrade(w http.ResponseWriter, r *http.Request) {
	clientIP := getRealIP(r)

	release, ok := s.connLimiter.Acquire(clientIP)
	if !ok {
		logger.Warning("WebSocket connection rejected - limit exceeded",
			"remote_addr", r.RemoteAddr,
			"client_ip", clientIP)
		http.Error(w, "Too many connections. Please try again later.", http.StatusTooManyRequests)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			allowed := s.cfg.Server.IsOriginAllowed(origin, r.Host)
			if !allowed {
				logger.Warning("WebSocket connection rejected - origin not allowed",
					"origin", origin,
					"host", r.Host,
					"remote_addr", r.RemoteAddr)
			}
			return allowed
		},
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", "error", err)
		release()
		return
	}
	wsConn.SetReadLimit(s.cfg.Server.MaxMessageSize)

	go func() {
		defer release()
		s.serveClient(NewWebSocketClient(wsConn))
	}()
}

// serveClient registers a session for client and runs it to completion.
func (s *Server) serveClient(client Client) {
	s.mu.Lock()
	select {
	case <-s.shutdown:
		s.mu.Unlock()
		client.Close()
		return
	default:
	}
	s.nextID++
	session := newSession(s.nextID, client, s)
	s.sessions[session.id] = session
	s.mu.Unlock()

	session.log.Info("Client connected")

	defer func() {
		s.mu.Lock()
		delete(s.sessions, session.id)
		s.mu.Unlock()
		client.Close()
		session.log.Info("Client disconnected")
	}()

	session.Run(context.Background())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": s.SessionCount(),
		"uptime":   s.GetUptime().Round(time.Second).String(),
	})
}

// getRealIP extracts the real client IP from an HTTP request.
// It checks X-Forwarded-For header first (for reverse proxy setups),
// then falls back to the direct remote address.
func getRealIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// The first entry is the original client
		if clientIP := strings.TrimSpace(strings.Split(xff, ",")[0]); clientIP != "" {
			return clientIP
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	return extractIP(r.RemoteAddr)
}

// Shutdown stops accepting sessions and closes the open ones. Safe to call
// more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		close(s.shutdown)
		if s.listener != nil {
			s.listener.Close()
		}
		for _, session := range s.sessions {
			session.client.Close()
		}
		httpServer := s.httpServer
		s.mu.Unlock()

		if httpServer != nil {
			err = httpServer.Shutdown(ctx)
		}
		s.wg.Wait()

		logger.Always("Server shutdown complete")
	})
	return err
}
