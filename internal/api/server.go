// Package api serves read-only observation of a running simulation: current
// snapshot, metrics, topology, outcome, and a websocket relay of each
// committed tick's event batch. It never mutates world state; it is a
// consumer of the same observer contract as everything else.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/percy-raskova/babylon-sub001/internal/hydrate"
	"github.com/percy-raskova/babylon-sub001/internal/observer"
	"github.com/percy-raskova/babylon-sub001/internal/sim"
)

// Server serves the observation API.
type Server struct {
	Loop     *sim.Loop
	Metrics  *observer.Metrics
	Topology *observer.Topology
	Relay    *Relay
	Addr     string
}

// Start begins serving in a goroutine and returns immediately.
func (s *Server) Start() {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /state", s.handleState)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.HandleFunc("GET /topology", s.handleTopology)
	mux.HandleFunc("GET /outcome", s.handleOutcome)
	if s.Relay != nil {
		mux.HandleFunc("GET /ws", s.Relay.handleWS)
	}

	srv := &http.Server{
		Addr:         s.Addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		slog.Info("observation api listening", "addr", s.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("observation api failed", "error", err)
		}
	}()
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, hydrate.Encode(s.Loop.Current()))
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.Metrics == nil {
		http.Error(w, "metrics observer not registered", http.StatusNotFound)
		return
	}
	writeJSON(w, s.Metrics.Report())
}

func (s *Server) handleTopology(w http.ResponseWriter, r *http.Request) {
	if s.Topology == nil {
		http.Error(w, "topology observer not registered", http.StatusNotFound)
		return
	}
	writeJSON(w, s.Topology.Report())
}

func (s *Server) handleOutcome(w http.ResponseWriter, r *http.Request) {
	term := s.Loop.Terminal()
	if term == nil {
		writeJSON(w, map[string]any{"outcome": "", "tick": s.Loop.Current().Tick})
		return
	}
	writeJSON(w, term)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("write response failed", "error", err)
	}
}
