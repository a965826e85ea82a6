package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/cwbudde/yuvsobel/internal/guard"
	"github.com/cwbudde/yuvsobel/internal/render"
	"github.com/cwbudde/yuvsobel/internal/sobel"
	"github.com/cwbudde/yuvsobel/internal/store"
)

// DefaultMaxBody bounds an uploaded frame: a quarter-pipeline source for a
// 1280x960 destination is 9.8 MB.
const DefaultMaxBody = 16 << 20

// Server represents the HTTP server
type Server struct {
	store       store.Store
	broadcaster *EventBroadcaster
	addr        string
	server      *http.Server
	maxBody     int64
	started     time.Time
	processed   atomic.Int64
}

// NewServer creates a new HTTP server persisting results in st.
func NewServer(addr string, st store.Store) *Server {
	return &Server{
		store:       st,
		broadcaster: NewEventBroadcaster(),
		addr:        addr,
		maxBody:     DefaultMaxBody,
		started:     time.Now(),
	}
}

// SetMaxBody changes the upload limit in bytes.
func (s *Server) SetMaxBody(n int64) {
	s.maxBody = n
}

// Handler returns the routed handler wrapped in middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/v1/gradients", s.handleGradients)
	mux.HandleFunc("/api/v1/gradients/", s.handleGradientsWithID)
	mux.HandleFunc("/api/v1/events", s.handleEvents)

	return s.loggingMiddleware(s.corsMiddleware(mux))
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("Starting HTTP server", "addr", s.addr, "backend", sobel.ActiveBackend.String())
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down HTTP server")
	s.broadcaster.Close()
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// handleHealth handles GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"backend":   sobel.ActiveBackend.String(),
		"hostSimd":  sobel.HostSIMD(),
		"uptime":    time.Since(s.started).Seconds(),
		"processed": s.processed.Load(),
	})
}

// handleGradients handles /api/v1/gradients
func (s *Server) handleGradients(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateGradient(w, r)
	case http.MethodGet:
		s.handleListGradients(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGradientsWithID handles /api/v1/gradients/:id/*
func (s *Server) handleGradientsWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/gradients/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Result ID required", http.StatusBadRequest)
		return
	}

	id := parts[0]
	if _, err := uuid.Parse(id); err != nil {
		http.Error(w, "Invalid result ID", http.StatusBadRequest)
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		s.handleGetGradient(w, r, id)
	case len(parts) == 1 && r.Method == http.MethodDelete:
		s.handleDeleteGradient(w, r, id)
	case len(parts) == 2 && parts[1] == "gradient.png" && r.Method == http.MethodGet:
		s.handleGetGradientImage(w, r, id)
	case len(parts) <= 2:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// handleCreateGradient handles POST /api/v1/gradients
func (s *Server) handleCreateGradient(w http.ResponseWriter, r *http.Request) {
	req, err := parseGradientRequest(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	src, err := readFrameBody(w, r, s.maxBody)
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		http.Error(w, err.Error(), status)
		return
	}

	if err := guard.Validate(req.geometry(), len(src)); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	start := time.Now()
	grid := req.run(src)
	elapsed := time.Since(start)

	res := &store.Result{
		ID:          uuid.New().String(),
		Source:      "upload",
		FrameWidth:  req.Width,
		FrameHeight: req.Height,
		Region:      req.Region.String(),
		Direction:   req.Dir.String(),
		Crop:        req.Crop,
		Quarter:     req.Quarter,
		Backend:     sobel.ActiveBackend.String(),
		GridWidth:   grid.Width,
		GridHeight:  grid.Height,
		Stats:       grid.Stats(req.Threshold),
		Duration:    float64(elapsed.Microseconds()) / 1000,
		Timestamp:   time.Now(),
	}

	if err := s.store.Save(res, grid); err != nil {
		slog.Error("Failed to save result", "id", res.ID, "error", err)
		http.Error(w, fmt.Sprintf("Failed to save result: %v", err), http.StatusInternalServerError)
		return
	}

	s.processed.Add(1)
	s.broadcaster.Broadcast(ResultEvent{Type: EventCreated, ID: res.ID, Result: res, Timestamp: res.Timestamp})
	slog.Info("Gradient computed", "id", res.ID, "region", res.Region, "direction", res.Direction,
		"quarter", res.Quarter, "durationMs", res.Duration)

	w.Header().Set("Location", "/api/v1/gradients/"+res.ID)
	writeJSON(w, http.StatusCreated, res)
}

// handleListGradients handles GET /api/v1/gradients
func (s *Server) handleListGradients(w http.ResponseWriter, r *http.Request) {
	results, err := s.store.List()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to list results: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// handleGetGradient handles GET /api/v1/gradients/:id
func (s *Server) handleGetGradient(w http.ResponseWriter, r *http.Request, id string) {
	res, err := s.store.Load(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleGetGradientImage handles GET /api/v1/gradients/:id/gradient.png
// With ?overlay=1 the region outline and a label are drawn on top.
func (s *Server) handleGetGradientImage(w http.ResponseWriter, r *http.Request, id string) {
	res, err := s.store.Load(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	grid, err := s.store.LoadGrid(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	var data []byte
	if r.URL.Query().Get("overlay") != "" && !res.Crop {
		region, perr := sobel.ParseRegion(res.Region)
		if perr != nil {
			http.Error(w, fmt.Sprintf("Stored region is invalid: %v", perr), http.StatusInternalServerError)
			return
		}
		img := render.Overlay(grid, region, res.Direction+"/"+res.Backend)
		data, err = render.EncodeBytes(img, render.PNG)
	} else {
		data, err = render.EncodeBytes(render.Gray(grid), render.PNG)
	}
	if err != nil {
		slog.Error("Failed to encode PNG", "error", err)
		http.Error(w, "Failed to encode image", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(data)
}

// handleDeleteGradient handles DELETE /api/v1/gradients/:id
func (s *Server) handleDeleteGradient(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.store.Delete(id); err != nil {
		writeStoreError(w, err)
		return
	}
	s.broadcaster.Broadcast(ResultEvent{Type: EventDeleted, ID: id, Timestamp: time.Now()})
	w.WriteHeader(http.StatusNoContent)
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Encoding")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
