package ask_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"virtualta/features/ask"
	"virtualta/internal/answer"
	"virtualta/internal/index"
	"virtualta/internal/retrieval"
)

func TestHandler_Ask(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setup      func(*MockRetriever, *MockSynthesizer)
		wantStatus int
		wantCode   string
		wantAnswer string
		wantLinks  int
	}{
		{
			name: "Success",
			body: `{"question":"which model?"}`,
			setup: func(r *MockRetriever, s *MockSynthesizer) {
				r.On("Retrieve", mock.Anything, "which model?").Return([]index.Candidate{courseHit("c", "http://x/1", 0.9)}, nil)
				s.On("Synthesize", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(answer.Answer{Text: "gpt", Links: []retrieval.Citation{{URL: "http://x/1", Text: "Course material"}}})
			},
			wantStatus: http.StatusOK,
			wantAnswer: "gpt",
			wantLinks:  1,
		},
		{
			name: "Null Image",
			body: `{"question":"anything","image":null}`,
			setup: func(r *MockRetriever, s *MockSynthesizer) {
				r.On("Retrieve", mock.Anything, "anything").Return(nil, nil)
			},
			wantStatus: http.StatusOK,
			wantAnswer: answer.NoContextText,
			wantLinks:  0,
		},
		{
			name:       "Malformed JSON",
			body:       `{"question":`,
			setup:      func(*MockRetriever, *MockSynthesizer) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "Missing Question",
			body:       `{}`,
			setup:      func(*MockRetriever, *MockSynthesizer) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "Invalid Image",
			body:       `{"question":"q","image":"***"}`,
			setup:      func(*MockRetriever, *MockSynthesizer) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ret := new(MockRetriever)
			syn := new(MockSynthesizer)
			tt.setup(ret, syn)

			h := ask.NewHandler(ask.NewService(ret, syn, 5, nil, nil))
			w := httptest.NewRecorder()
			h.Ask(w, httptest.NewRequest(http.MethodPost, "/api/", bytes.NewBufferString(tt.body)))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["error"].(map[string]interface{})["code"])
				return
			}
			assert.Equal(t, tt.wantAnswer, body["answer"])
			links, ok := body["links"].([]interface{})
			require.True(t, ok, "links must be a JSON array")
			assert.Len(t, links, tt.wantLinks)
		})
	}
}
