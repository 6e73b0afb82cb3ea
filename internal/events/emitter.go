// Package events publishes answered-question notifications to NSQ.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"virtualta/internal/config"
	"virtualta/internal/middleware"
)

type Publisher interface {
	Publish(topic string, body []byte) error
}

type AnswerEvent struct {
	ID            string    `json:"id"`
	Question      string    `json:"question"`
	HasImage      bool      `json:"has_image"`
	Answer        string    `json:"answer"`
	LinkCount     int       `json:"link_count"`
	CourseHits    int       `json:"course_hits"`
	DiscourseHits int       `json:"discourse_hits"`
	CorrelationID string    `json:"correlation_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// Emitter is best effort: publish failures are logged and swallowed.
// A nil Emitter or one without a publisher does nothing.
type Emitter struct {
	pub   Publisher
	topic string
}

func NewEmitter(pub Publisher) *Emitter {
	return &Emitter{pub: pub, topic: config.TopicAskAnswered}
}

func (e *Emitter) AnswerReady(ctx context.Context, ev AnswerEvent) {
	if e == nil || e.pub == nil {
		return
	}
	if ev.CorrelationID == "" {
		ev.CorrelationID = middleware.GetCorrelationID(ctx)
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}

	body, err := json.Marshal(ev)
	if err != nil {
		slog.WarnContext(ctx, "failed to encode answer event", "error", err)
		return
	}
	if err := e.pub.Publish(e.topic, body); err != nil {
		slog.WarnContext(ctx, "failed to publish answer event", "topic", e.topic, "error", err)
	}
}
