// Package server is the HTTP surface: the session websocket the
// browser shell connects to, a health endpoint, and the static shell
// bundle.
package server

import (
	"context"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/embedplay/embedplay/internal/httputil"
	"github.com/embedplay/embedplay/internal/ratelimit"
	"github.com/embedplay/embedplay/internal/session"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Deps    session.Deps
	Pinger  Pinger
	ShellFS fs.FS
	BaseURL string
}

type Server struct {
	router   chi.Router
	deps     session.Deps
	pinger   Pinger
	shellFS  fs.FS
	baseURL  string
	upgrader websocket.Upgrader
}

func New(cfg Config) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(slogMiddleware)
	r.Use(securityHeaders(SecurityConfig{BaseURL: cfg.BaseURL}))

	s := &Server{
		router:  r,
		deps:    cfg.Deps,
		pinger:  cfg.Pinger,
		shellFS: cfg.ShellFS,
		baseURL: cfg.BaseURL,
		// Shells are embedded on arbitrary producer pages, so the
		// socket accepts any origin; the outbox gates what goes back
		// out by referrer origin.
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Get("/api/config", s.handleConfig)

	sessionLimiter := ratelimit.NewLimiter(2, 10)
	s.router.With(sessionLimiter.Middleware).Get("/api/session", s.handleSession)

	if s.shellFS != nil {
		shell := newShellServer(s.shellFS)
		s.router.NotFound(shell.ServeHTTP)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  "preferences store unreachable",
			})
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleConfig tells the shell which optional collaborators this
// deployment carries, so it can skip wiring surfaces the engine will
// never answer for.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"baseUrl":          s.baseURL,
		"continuousPlay":   s.deps.API != nil,
		"viewingHistory":   s.deps.Profile != nil,
		"preferences":      s.deps.Redis != nil,
		"localServiceArea": s.deps.Geo != nil,
	})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("server: session upgrade failed", "error", err, "remote_addr", r.RemoteAddr)
		return
	}
	defer conn.Close()

	sess := session.New(conn, clientIP(r), s.deps)
	if err := sess.Run(r.Context()); err != nil {
		slog.Info("server: session ended", "id", sess.ID, "error", err)
	}
}

// clientIP resolves the viewer address for geolocation screening,
// trusting the nearest proxy header when present.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
