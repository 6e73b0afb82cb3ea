// Package answer composes the final reply from retrieved context with a chat model.
package answer

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"virtualta/internal/retrieval"
)

const (
	SystemPrompt = "You are a helpful teaching assistant for the IIT Madras Tools in Data Science course. " +
		"Answer questions based on the provided context from course materials and discussion forums. Be concise and accurate."

	ApologyText   = "I apologize, but I'm unable to generate an answer at the moment. Please try again later."
	NoContextText = "I couldn't find relevant information to answer your question. Please try rephrasing or asking about course-related topics."
)

var ErrEmptyCompletion = errors.New("empty completion")

// ChatRequest is a single system + user exchange, optionally carrying an image.
type ChatRequest struct {
	Model       string
	System      string
	Prompt      string
	Image       *Image
	MaxTokens   int
	Temperature float32
}

type ChatModel interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

type Options struct {
	ChatModel   string
	VisionModel string
	MaxTokens   int
	Temperature float32
	MaxLinks    int
}

func DefaultOptions() Options {
	return Options{
		ChatModel:   "gpt-3.5-turbo",
		VisionModel: "gpt-4o-mini",
		MaxTokens:   500,
		Temperature: 0.7,
		MaxLinks:    3,
	}
}

// Answer is the externally visible result of a question.
type Answer struct {
	Text  string               `json:"answer"`
	Links []retrieval.Citation `json:"links"`
}

// Fallback answers carry no citations.
func Fallback(text string) Answer {
	return Answer{Text: text, Links: []retrieval.Citation{}}
}

type Synthesizer struct {
	chat ChatModel
	opts Options
}

func NewSynthesizer(chat ChatModel, opts Options) *Synthesizer {
	def := DefaultOptions()
	if opts.ChatModel == "" {
		opts.ChatModel = def.ChatModel
	}
	if opts.VisionModel == "" {
		opts.VisionModel = opts.ChatModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = def.MaxTokens
	}
	if opts.MaxLinks <= 0 {
		opts.MaxLinks = def.MaxLinks
	}
	return &Synthesizer{chat: chat, opts: opts}
}

// Prompt renders the user turn sent to the model.
func Prompt(contextText, question string) string {
	return "Context:\n" + contextText + "\n\nQuestion: " + question
}

// Synthesize asks the model for an answer. Backend failures return the
// apology text with no links rather than an error.
func (s *Synthesizer) Synthesize(ctx context.Context, question, contextText string, links []retrieval.Citation, img *Image) Answer {
	req := ChatRequest{
		Model:       s.opts.ChatModel,
		System:      SystemPrompt,
		Prompt:      Prompt(contextText, question),
		MaxTokens:   s.opts.MaxTokens,
		Temperature: s.opts.Temperature,
	}
	if img != nil && len(img.Data) > 0 {
		req.Image = img
		req.Model = s.opts.VisionModel
	}

	text, err := s.chat.Complete(ctx, req)
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptyCompletion
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate answer", "model", req.Model, "with_image", req.Image != nil, "error", err)
		return Fallback(ApologyText)
	}

	n := min(len(links), s.opts.MaxLinks)
	out := make([]retrieval.Citation, n)
	copy(out, links[:n])
	return Answer{Text: text, Links: out}
}
