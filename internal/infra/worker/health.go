package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// HealthServer exposes the worker's liveness and readiness probes.
//
// Endpoints:
//   - /health: liveness, 200 as long as the process serves requests
//   - /health/ready: readiness, 200 once the scheduler is running and
//     503 during startup and shutdown
//   - /health/jobs: per-job bookkeeping (schedule, enabled, last run,
//     last status)
//
// Readiness flips to false before the scheduler drains so orchestrators
// stop considering the pod healthy while jobs finish.
type HealthServer struct {
	addr      string
	logger    *slog.Logger
	ready     atomic.Bool
	startedAt time.Time
	server    *http.Server
	jobStates func() []JobState
}

// healthStatus is the JSON body of both probe endpoints.
type healthStatus struct {
	Status string `json:"status"`
	Uptime string `json:"uptime,omitempty"`
}

// NewHealthServer creates a health server listening on addr. The server
// starts not ready; call SetReady(true) once startup completes.
func NewHealthServer(addr string, logger *slog.Logger) *HealthServer {
	return &HealthServer{
		addr:      addr,
		logger:    logger,
		startedAt: time.Now(),
	}
}

// Start runs the probe endpoints until the context is cancelled. It blocks,
// returning http.ErrServerClosed after a graceful shutdown.
func (h *HealthServer) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleLiveness)
	mux.HandleFunc("/health/ready", h.handleReadiness)
	mux.HandleFunc("/health/jobs", h.handleJobs)

	h.server = &http.Server{
		Addr:         h.addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		h.logger.Info("health server starting", slog.String("addr", h.addr))
		if err := h.server.ListenAndServe(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		h.logger.Info("health server shutting down")
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			h.logger.Error("health server shutdown failed", slog.Any("error", err))
			return err
		}
		return http.ErrServerClosed

	case err := <-errChan:
		if err != http.ErrServerClosed {
			h.logger.Error("health server failed", slog.Any("error", err))
		}
		return err
	}
}

// SetJobStates wires a provider for the /health/jobs endpoint, typically
// Scheduler.JobStates. Call before Start.
func (h *HealthServer) SetJobStates(provider func() []JobState) {
	h.jobStates = provider
}

// SetReady flips the readiness state reported by /health/ready.
func (h *HealthServer) SetReady(ready bool) {
	h.ready.Store(ready)
	h.logger.Info("health server readiness changed", slog.Bool("ready", ready))
}

func (h *HealthServer) handleLiveness(w http.ResponseWriter, r *http.Request) {
	h.writeStatus(w, http.StatusOK, healthStatus{
		Status: "ok",
		Uptime: time.Since(h.startedAt).Round(time.Second).String(),
	})
}

func (h *HealthServer) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if h.ready.Load() {
		h.writeStatus(w, http.StatusOK, healthStatus{Status: "ok"})
		return
	}
	h.writeStatus(w, http.StatusServiceUnavailable, healthStatus{Status: "not ready"})
}

func (h *HealthServer) handleJobs(w http.ResponseWriter, r *http.Request) {
	states := []JobState{}
	if h.jobStates != nil {
		states = h.jobStates()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(states); err != nil {
		h.logger.Error("failed to encode job states", slog.Any("error", err))
	}
}

func (h *HealthServer) writeStatus(w http.ResponseWriter, code int, status healthStatus) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(status); err != nil {
		h.logger.Error("failed to encode health response", slog.Any("error", err))
	}
}
