package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// StatusServer provides an HTTP interface for checking on the engine.
type StatusServer struct {
	server  *http.Server
	updater *Updater
	logger  *zap.Logger
}

// NewStatusServer creates a new StatusServer.
func NewStatusServer(updater *Updater, port int, logger *zap.Logger) *StatusServer {
	mux := http.NewServeMux()
	s := &StatusServer{
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
		updater: updater,
		logger:  logger.Named("status-server"),
	}
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/status", s.statusHandler)
	return s
}

// Start runs the HTTP server in a new goroutine.
func (s *StatusServer) Start() {
	s.logger.Info("Starting status server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			s.logger.Error("Status server failed", zap.Error(err))
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *StatusServer) Stop(ctx context.Context) error {
	s.logger.Info("Stopping status server...")
	return s.server.Shutdown(ctx)
}

func (s *StatusServer) statusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.updater.Status()); err != nil {
		s.logger.Error("Failed to write status response", zap.Error(err))
		http.Error(w, "Failed to encode status", http.StatusInternalServerError)
	}
}

func (s *StatusServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}
