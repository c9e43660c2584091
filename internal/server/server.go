package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/omarshaarawi/hoopscores/internal/models"
	"github.com/omarshaarawi/hoopscores/internal/repository/memory"
	"github.com/omarshaarawi/hoopscores/internal/service"
)

// Rotator is the navigation surface of the rotator service.
type Rotator interface {
	Next(ctx context.Context)
	Previous(ctx context.Context)
	ToggleRotation() bool
	JumpTo(ctx context.Context, query string) error
}

// VisibilityChecker reloads a stale board when a client becomes visible.
type VisibilityChecker interface {
	OnVisible(ctx context.Context) bool
}

type Server struct {
	rotator    Rotator
	visibility VisibilityChecker
	repo       *memory.Repository
	hub        *Hub
	origins    []string

	// ctx outlives individual requests; WebSocket pumps and the work they
	// dispatch run under it.
	ctx context.Context

	upgrader websocket.Upgrader
}

func New(ctx context.Context, rotator Rotator, visibility VisibilityChecker, repo *memory.Repository, hub *Hub, origins []string) *Server {
	return &Server{
		rotator:    rotator,
		visibility: visibility,
		repo:       repo,
		hub:        hub,
		origins:    origins,
		ctx:        ctx,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", s.handlePage)
	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.handleWebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Get("/view", s.handleView)
		r.Post("/next", s.handleNext)
		r.Post("/previous", s.handlePrevious)
		r.Post("/toggle", s.handleToggle)
		r.Post("/jump", s.handleJump)
		r.Post("/visible", s.handleVisible)
	})

	return r
}

func (s *Server) currentView() models.View {
	view, ok := s.repo.GetView()
	if !ok {
		return models.View{Kind: models.ViewLoading, Message: "Loading boxscore data..."}
	}
	return view
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	view := s.currentView()
	board, err := RenderBoard(view)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.Execute(w, pageData{Board: board, Paused: view.Paused}); err != nil {
		slog.Error("Error writing page", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"view":    s.currentView().Kind,
		"clients": s.hub.ClientCount(),
	})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.currentView())
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	s.rotator.Next(r.Context())
	writeJSON(w, http.StatusOK, s.currentView())
}

func (s *Server) handlePrevious(w http.ResponseWriter, r *http.Request) {
	s.rotator.Previous(r.Context())
	writeJSON(w, http.StatusOK, s.currentView())
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	rotating := s.rotator.ToggleRotation()
	writeJSON(w, http.StatusOK, map[string]bool{"rotating": rotating})
}

func (s *Server) handleJump(w http.ResponseWriter, r *http.Request) {
	team := r.URL.Query().Get("team")
	if team == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "team is required"})
		return
	}

	err := s.rotator.JumpTo(r.Context(), team)
	switch {
	case errors.Is(err, service.ErrNoMatch), errors.Is(err, service.ErrNoGames):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case err != nil:
		s.serverError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, s.currentView())
	}
}

func (s *Server) handleVisible(w http.ResponseWriter, r *http.Request) {
	reloaded := s.visibility.OnVisible(r.Context())
	writeJSON(w, http.StatusOK, map[string]bool{"reloaded": reloaded})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("WebSocket upgrade error", "error", err)
		return
	}

	c := NewClient(uuid.New().String(), conn, s.hub, s.dispatch)
	s.hub.Register(c, s.currentView)

	go c.WritePump(s.ctx)
	go c.ReadPump(s.ctx)
}

// dispatch handles one client message. Navigation runs on its own goroutine
// so the client's reads keep flowing while a boxscore loads.
func (s *Server) dispatch(ctx context.Context, c *Client, msg ClientMessage) {
	switch msg.Type {
	case "next":
		go s.rotator.Next(ctx)
	case "previous":
		go s.rotator.Previous(ctx)
	case "toggle":
		s.rotator.ToggleRotation()
	case "jump":
		go func() {
			if err := s.rotator.JumpTo(ctx, msg.Team); err != nil {
				slog.Info("Jump failed", "client", c.ID, "team", msg.Team, "error", err)
			}
		}()
	case "visibility":
		if msg.Visible != nil && c.BecameVisible(*msg.Visible) {
			go s.visibility.OnVisible(ctx)
		}
	default:
		slog.Warn("Unknown client message", "client", c.ID, "type", msg.Type)
	}
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}
