package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hardoc15/Chalked/cmd/server/internal/market"
)

type Server struct {
	svc        *market.Service
	logger     *zap.Logger
	httpServer *http.Server
}

// NewServer wires the HTTP surface. wsHandler, when non-nil, is mounted at
// /ws so the push channel shares the listener with the REST API.
func NewServer(svc *market.Service, logger *zap.Logger, port, corsOrigin string, wsHandler http.Handler) *Server {
	s := &Server{
		svc:    svc,
		logger: logger,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/market/status", s.handleMarketStatus)
	mux.HandleFunc("GET /api/professors", s.handleListProfessors)
	mux.HandleFunc("GET /api/professors/{id}", s.handleGetProfessor)
	mux.HandleFunc("POST /api/professors/{id}/vote", s.handleVote)

	if wsHandler != nil {
		mux.Handle("GET /ws", wsHandler)
	}

	// Catch-all so unknown endpoints answer in the API's error shape
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Endpoint not found")
	})

	s.httpServer = &http.Server{
		Addr:         port,
		Handler:      corsMiddleware(mux, corsOrigin),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return s
}

// Handler exposes the configured handler for tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	s.logger.Info("HTTP server started", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// --- middleware ---

func corsMiddleware(next http.Handler, allowOrigin string) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- response helpers ---

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apiResponse{Success: false, Error: msg})
}
