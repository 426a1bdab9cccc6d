package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// HealthResponse is served on /health.
type HealthResponse struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	Subscribers int    `json:"subscribers"`
	Timestamp   string `json:"ts"`
}

// NewMux routes /ws to h and serves /health.
func NewMux(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(HealthResponse{
			Status:      "ok",
			Service:     "reelsync",
			Subscribers: h.hub.SubscriberCount(),
			Timestamp:   time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
	return mux
}

// ListenAndServe serves the mux on addr until ctx is cancelled, then shuts
// the server down.
func ListenAndServe(ctx context.Context, addr string, h *Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewMux(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("api listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("api shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
