// Package server exposes a running game over HTTP: snapshots for renderers,
// an endpoint for human actions and a websocket feed of every change.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"catan/engine"
	"catan/game"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog/log"
)

const watchBuffer = 16

type Server struct {
	mu     sync.Mutex      // serializes access to the engine
	engine *engine.Engine
	ctx    context.Context // bounds the game, not a single request

	watchMu  sync.Mutex
	watchers map[chan game.Snapshot]struct{}
}

type ActionRequest struct {
	ID int `json:"id"`
}

type ActionResponse struct {
	Action string        `json:"action"`
	State  game.Snapshot `json:"state"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func New(e *engine.Engine) *Server {
	s := &Server{
		engine:   e,
		ctx:      context.Background(),
		watchers: make(map[chan game.Snapshot]struct{}),
	}
	e.Observe(s.publish)
	return s
}

// Start plays until the first human decision. Bots keep playing under ctx
// after every human action.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ctx = ctx
	return s.engine.Advance(ctx)
}

func (s *Server) Handler() http.Handler {
	// Create a local mux rather than using the global DefaultServeMux
	mux := http.NewServeMux()
	mux.HandleFunc("GET /state", s.handleState)
	mux.HandleFunc("GET /legal", s.handleLegal)
	mux.HandleFunc("POST /action", s.handleAction)
	mux.HandleFunc("GET /watch", s.handleWatch)
	return mux
}

// ListenAndServe serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdown)
	}()

	log.Info().Msgf("serving game on %s", addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) snapshot() game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.engine.Game.Snapshot()
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshot())
}

func (s *Server) handleLegal(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	g := s.engine.Game
	space := g.ActionSpace()
	legal := map[int]string{}
	for _, id := range game.LegalActionIDs(g) {
		if a, err := space.Resolve(id); err == nil {
			legal[id] = a.String()
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, legal)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad request: " + err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.engine.Waiting() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "no player is waiting for input"})
		return
	}
	if !slices.Contains(game.LegalActionIDs(s.engine.Game), req.ID) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("action %d is not legal", req.ID)})
		return
	}
	action, err := s.engine.Game.ActionSpace().Resolve(req.ID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := s.engine.Apply(s.ctx, action); err != nil {
		log.Error().Err(err).Int("id", req.ID).Msg("game stopped after a human action")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, ActionResponse{Action: action.String(), State: s.engine.Game.Snapshot()})
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer c.CloseNow()

	updates := s.subscribe()
	defer s.unsubscribe(updates)

	ctx := c.CloseRead(r.Context())
	if err := wsjson.Write(ctx, c, s.snapshot()); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			c.Close(websocket.StatusNormalClosure, "")
			return
		case snapshot := <-updates:
			if err := wsjson.Write(ctx, c, snapshot); err != nil {
				return
			}
		}
	}
}

func (s *Server) subscribe() chan game.Snapshot {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	ch := make(chan game.Snapshot, watchBuffer)
	s.watchers[ch] = struct{}{}
	return ch
}

func (s *Server) unsubscribe(ch chan game.Snapshot) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	delete(s.watchers, ch)
}

// publish runs on the engine's goroutine with s.mu held. Slow watchers miss
// snapshots rather than stall the game.
func (s *Server) publish(e *engine.Engine) {
	snapshot := e.Game.Snapshot()

	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	for ch := range s.watchers {
		select {
		case ch <- snapshot:
		default:
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("failed to encode response")
	}
}
