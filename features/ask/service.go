// Package ask answers a question against the loaded course knowledge.
package ask

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"virtualta/features/history"
	"virtualta/internal/answer"
	"virtualta/internal/events"
	"virtualta/internal/index"
	"virtualta/internal/retrieval"
)

var ErrInvalidRequest = errors.New("invalid request")

type Request struct {
	Question string `json:"question"`
	Image    string `json:"image,omitempty"`
}

type Retriever interface {
	Retrieve(ctx context.Context, question string) (course, discourse []index.Candidate)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, question, contextText string, links []retrieval.Citation, img *answer.Image) answer.Answer
}

type Recorder interface {
	Record(ctx context.Context, in history.Interaction)
}

type Notifier interface {
	AnswerReady(ctx context.Context, ev events.AnswerEvent)
}

type Service struct {
	retriever Retriever
	synth     Synthesizer
	topK      int
	history   Recorder
	events    Notifier
}

// NewService wires the pipeline. recorder and notifier may be nil.
func NewService(r Retriever, s Synthesizer, topK int, recorder Recorder, notifier Notifier) *Service {
	if topK <= 0 {
		topK = retrieval.DefaultOptions().TopK
	}
	return &Service{retriever: r, synth: s, topK: topK, history: recorder, events: notifier}
}

func (s *Service) Ask(ctx context.Context, req Request) (answer.Answer, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return answer.Answer{}, fmt.Errorf("%w: question is required", ErrInvalidRequest)
	}

	img, err := answer.DecodeImage(req.Image)
	if err != nil {
		return answer.Answer{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	course, discourse := s.retriever.Retrieve(ctx, question)

	var ans answer.Answer
	if len(course) == 0 && len(discourse) == 0 {
		slog.InfoContext(ctx, "no relevant context found")
		ans = answer.Fallback(answer.NoContextText)
	} else {
		contextText, links := retrieval.Assemble(course, discourse, s.topK)
		ans = s.synth.Synthesize(ctx, question, contextText, links, img)
	}

	s.after(ctx, question, img != nil, ans, len(course), len(discourse))
	return ans, nil
}

func (s *Service) after(ctx context.Context, question string, hasImage bool, ans answer.Answer, courseHits, discourseHits int) {
	in := history.Interaction{
		Question:      question,
		HasImage:      hasImage,
		Answer:        ans.Text,
		Links:         ans.Links,
		CourseHits:    courseHits,
		DiscourseHits: discourseHits,
	}
	if s.history != nil {
		s.history.Record(ctx, in)
	}
	if s.events != nil {
		s.events.AnswerReady(ctx, events.AnswerEvent{
			Question:      question,
			HasImage:      hasImage,
			Answer:        ans.Text,
			LinkCount:     len(ans.Links),
			CourseHits:    courseHits,
			DiscourseHits: discourseHits,
		})
	}
}
