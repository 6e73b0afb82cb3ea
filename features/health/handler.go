// Package health reports whether the knowledge base has finished loading.
package health

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

const (
	StatusHealthy = "healthy"
	StatusLoading = "loading"
)

type Lifecycle interface {
	Ready() bool
	Loaded() int
}

type Handler struct {
	lifecycle Lifecycle
}

func NewHandler(l Lifecycle) *Handler {
	return &Handler{lifecycle: l}
}

type Response struct {
	Status     string `json:"status"`
	DataLoaded int    `json:"data_loaded"`
}

func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	resp := Response{Status: StatusHealthy, DataLoaded: h.lifecycle.Loaded()}
	status := http.StatusOK
	if !h.lifecycle.Ready() {
		resp.Status = StatusLoading
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}
