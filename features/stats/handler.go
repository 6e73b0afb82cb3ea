// Package stats exposes per-corpus record counts and, when history is
// configured, the number of recorded interactions.
package stats

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"virtualta/features/history"
	"virtualta/internal/index"
	"virtualta/internal/middleware"
)

type InteractionCounter interface {
	Count(ctx context.Context) (int, error)
}

type Handler struct {
	kb           *index.KnowledgeBase
	interactions InteractionCounter
}

func NewHandler(kb *index.KnowledgeBase, interactions InteractionCounter) *Handler {
	return &Handler{kb: kb, interactions: interactions}
}

type StatsResponse struct {
	CourseRecords    int  `json:"course_records"`
	DiscourseRecords int  `json:"discourse_records"`
	Interactions     *int `json:"interactions,omitempty"`
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	slog.InfoContext(ctx, "getting stats", "correlationId", correlationID)

	resp := StatsResponse{}
	if h.kb != nil {
		resp.CourseRecords = h.kb.Course.Len()
		resp.DiscourseRecords = h.kb.Discourse.Len()
	}

	if h.interactions != nil {
		n, err := h.interactions.Count(ctx)
		switch {
		case errors.Is(err, history.ErrDisabled):
		case err != nil:
			slog.ErrorContext(ctx, "failed to count interactions", "error", err, "correlationId", correlationID)
			h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count interactions", http.StatusInternalServerError)
			return
		default:
			resp.Interactions = &n
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": resp}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
