// Package web hosts the configuration document over HTTP: the same API the
// remote store backend consumes. It is plain I/O plumbing around a backing
// store; all document semantics live in the core packages.
package web

import (
	"bufio"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Backing abstracts the store the server writes through to. It matches
// store.Store; the indirection keeps this package free of a direct
// dependency direction problem in tests.
type Backing interface {
	Load() (map[string]any, error)
	Save(doc map[string]any) error
	Reset() (map[string]any, error)
}

type ServerConfig struct {
	Addr string

	// AuthToken, when set, requires "Authorization: Bearer <token>" on
	// every request.
	AuthToken string

	// RequestLog mirrors the document's REQUEST_LOG switch: log one line
	// per request.
	RequestLog bool
}

type Server struct {
	cfg ServerConfig
	st  Backing
	log *logrus.Logger

	// mu serializes store access and revision bumps; the backing stores
	// are not concurrency-safe against interleaved load/save.
	mu  sync.Mutex
	rev int64

	clients   map[*client]struct{}
	clientsMu sync.Mutex
}

// client wraps one feed connection. wmu serializes writes: the websocket
// package allows at most one concurrent writer per connection, and both
// the hello write and broadcasts from request goroutines target it.
type client struct {
	conn *websocket.Conn
	wmu  sync.Mutex
}

func (c *client) write(msg []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

func New(cfg ServerConfig, st Backing) *Server {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &Server{
		cfg:     cfg,
		st:      st,
		log:     log,
		clients: map[*client]struct{}{},
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/config", s.handleGet)
	mux.HandleFunc("PUT /api/config", s.handlePut)
	mux.HandleFunc("POST /api/config/reset", s.handleReset)
	mux.HandleFunc("GET /api/config/ws", s.handleWS)
	return s.wrap(mux)
}

func (s *Server) ListenAndServe() error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.WithField("addr", s.cfg.Addr).Info("serving configuration document")
	return srv.ListenAndServe()
}

func (s *Server) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.AuthToken != "" && !s.authorized(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		if s.cfg.RequestLog {
			s.log.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start).String(),
			}).Info("request")
		}
	})
}

func (s *Server) authorized(r *http.Request) bool {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		// Browser websocket clients cannot set headers; accept the token
		// as a query parameter on the feed endpoint only.
		if strings.HasSuffix(r.URL.Path, "/ws") {
			return r.URL.Query().Get("token") == s.cfg.AuthToken
		}
		return false
	}
	return strings.TrimPrefix(h, prefix) == s.cfg.AuthToken
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	doc, err := s.st.Load()
	s.mu.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, doc)
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	var doc map[string]any
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		http.Error(w, "invalid document: "+err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	err := s.st.Save(doc)
	var rev int64
	if err == nil {
		s.rev++
		rev = s.rev
	}
	s.mu.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	s.broadcast(rev)
	writeJSON(w, map[string]any{"ok": true, "revision": rev})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	doc, err := s.st.Reset()
	var rev int64
	if err == nil {
		s.rev++
		rev = s.rev
	}
	s.mu.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	s.broadcast(rev)
	writeJSON(w, doc)
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The feed carries no sensitive payload, only revision bumps.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleWS streams revision bumps so an open editor knows the document
// changed underneath it and can offer a reload.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "websocket upgrade failed", http.StatusBadRequest)
		return
	}
	cl := &client{conn: conn}

	// Hello message: the current revision, so clients can tell whether
	// they connected to a document that already moved on. Written before
	// the client joins the broadcast set, so it is always first.
	s.mu.Lock()
	rev := s.rev
	s.mu.Unlock()
	hello, _ := json.Marshal(map[string]any{"revision": rev})
	if err := cl.write(hello); err != nil {
		_ = conn.Close()
		return
	}

	s.clientsMu.Lock()
	s.clients[cl] = struct{}{}
	s.clientsMu.Unlock()

	// Reader loop: discard client messages, notice the close.
	go func() {
		defer s.dropClient(cl)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) dropClient(cl *client) {
	s.clientsMu.Lock()
	delete(s.clients, cl)
	s.clientsMu.Unlock()
	_ = cl.conn.Close()
}

func (s *Server) broadcast(rev int64) {
	msg, _ := json.Marshal(map[string]any{"revision": rev})
	s.clientsMu.Lock()
	conns := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		conns = append(conns, c)
	}
	s.clientsMu.Unlock()
	for _, c := range conns {
		if err := c.write(msg); err != nil {
			s.dropClient(c)
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack passes through so the websocket upgrade works behind the logging
// wrapper.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hj.Hijack()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
